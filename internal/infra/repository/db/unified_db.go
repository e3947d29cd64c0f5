package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	// 基礎操作
	GetDB() *gorm.DB
	InitMigrate() error

	// Product 相關操作
	IProductRepository

	// Order 相關操作
	IOrderRepository

	// User 相關操作
	IUserRepository

	// Payment 相關操作
	IPaymentRepository
}

// IProductRepository Product 相關操作介面
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID uint) (*model.Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, productID uint) error
	GetProductStock(ctx context.Context, productID uint) (int, error)
	AddProductStock(ctx context.Context, productID uint, quantity uint) error
	DeductProductStock(ctx context.Context, productID uint, quantity uint) error
}

// IOrderRepository Order 相關操作介面
type IOrderRepository interface {
	PlaceOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetOrdersByCustomerID(ctx context.Context, customerID uint) ([]model.Order, error)
	MarkOrderPaid(ctx context.Context, id uuid.UUID, reference string, paidAt time.Time) (bool, error)
	MarkOrderCancelled(ctx context.Context, id uuid.UUID) (bool, error)
	HardDeleteOrder(ctx context.Context, id uuid.UUID) error
	GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error)
	GetOrderItemsBySellerID(ctx context.Context, sellerID uint) ([]model.OrderItem, error)
}

// IUserRepository User 相關操作介面
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	PatchUserFields(ctx context.Context, id uint, updates map[string]interface{}) error
	DeleteUser(ctx context.Context, id uint) error
}

// IPaymentRepository Payment 相關操作介面
type IPaymentRepository interface {
	CreatePayment(ctx context.Context, payment *model.Payment) error
	GetPaymentByReference(ctx context.Context, reference string) (*model.Payment, error)
	GetPaymentsByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error)
	GetPaymentHistories(ctx context.Context, reference string) ([]model.PaymentHistory, error)
	ConfirmPaymentSuccess(ctx context.Context, reference string, gatewayReference string, gatewayResponse json.RawMessage, paidAt time.Time) (bool, error)
	ConfirmPaymentFailure(ctx context.Context, reference string, gatewayResponse json.RawMessage) (bool, error)
}

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*ProductRepo
	*OrderRepo
	*UserRepo
	*PaymentRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		db:          db,
		dbDao:       dbDao,
		ProductRepo: NewProductRepo(dbDao),
		OrderRepo:   NewOrderRepo(dbDao),
		UserRepo:    NewUserRepo(dbDao),
		PaymentRepo: NewPaymentRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// GetDB 獲取資料庫連接
func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.db
}

// 編譯期檢查
var (
	_ UnifiedDB          = (*UnifiedDBImpl)(nil)
	_ IProductRepository = (*UnifiedDBImpl)(nil)
	_ IOrderRepository   = (*UnifiedDBImpl)(nil)
	_ IUserRepository    = (*UnifiedDBImpl)(nil)
	_ IPaymentRepository = (*UnifiedDBImpl)(nil)
)

package db

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/RoyceAzure/lab/marketplace/internal/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type OrderRepoTestSuite struct {
	suite.Suite
	db          *gorm.DB
	orderRepo   *OrderRepo
	productRepo *ProductRepo
	userRepo    *UserRepo
}

// SetupSuite 在測試套件開始前執行
func (suite *OrderRepoTestSuite) SetupSuite() {
	db, err := GetDbConn("lab_marketplace", "localhost", "5432", "royce", "password")
	require.NoError(suite.T(), err)
	dbDao := NewDbDao(db)
	require.NoError(suite.T(), dbDao.InitMigrate())

	suite.db = db
	suite.orderRepo = NewOrderRepo(dbDao)
	suite.productRepo = NewProductRepo(dbDao)
	suite.userRepo = NewUserRepo(dbDao)
}

// SetupTest 在每個測試前執行
func (suite *OrderRepoTestSuite) SetupTest() {
	// 清空資料表
	suite.db.Exec("DELETE FROM payment_histories")
	suite.db.Exec("DELETE FROM payments")
	suite.db.Exec("DELETE FROM order_items")
	suite.db.Exec("DELETE FROM orders")
	suite.db.Exec("DELETE FROM products")
	suite.db.Exec("DELETE FROM users")
}

func (suite *OrderRepoTestSuite) TearDownSuite() {
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *OrderRepoTestSuite) createTestBuyer() *model.User {
	user := &model.User{
		UserName:  "Test Buyer",
		UserEmail: "buyer@example.com",
		UserType:  model.UserTypeBuyer,
	}
	_, err := suite.userRepo.CreateUser(context.Background(), user)
	require.NoError(suite.T(), err)
	return user
}

func (suite *OrderRepoTestSuite) createTestProduct(name string, price string, stock uint) *model.Product {
	seller := &model.User{
		UserName:  "Seller " + name,
		UserEmail: name + "-seller@example.com",
		UserType:  model.UserTypeSeller,
	}
	_, err := suite.userRepo.CreateUser(context.Background(), seller)
	require.NoError(suite.T(), err)

	product := &model.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		Status:   model.ProductStatusActive,
		SellerID: seller.UserID,
	}
	require.NoError(suite.T(), suite.productRepo.CreateProduct(context.Background(), product))
	return product
}

func (suite *OrderRepoTestSuite) buildOrder(buyer *model.User, lines ...model.OrderItem) *model.Order {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.ProductPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	order := &model.Order{
		OrderID:         util.GenerateOrderID(),
		CustomerID:      buyer.UserID,
		Status:          model.OrderStatusPending,
		TotalAmount:     total,
		DeliveryAddress: "123 Test St",
		DeliveryPhone:   "1234567890",
		PaymentMethod:   "paystack",
	}
	for _, line := range lines {
		line.OrderID = order.OrderID
		order.OrderItems = append(order.OrderItems, line)
	}
	return order
}

func orderLine(product *model.Product, quantity int) model.OrderItem {
	return model.OrderItem{
		ProductID:    product.ProductID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Quantity:     quantity,
		SellerID:     product.SellerID,
	}
}

func (suite *OrderRepoTestSuite) TestPlaceOrderDeductsStock() {
	buyer := suite.createTestBuyer()
	product := suite.createTestProduct("A", "10.00", 5)

	order := suite.buildOrder(buyer, orderLine(product, 2))
	require.NoError(suite.T(), suite.orderRepo.PlaceOrder(context.Background(), order))

	found, err := suite.orderRepo.GetOrderByID(context.Background(), order.OrderID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), model.OrderStatusPending, found.Status)
	require.Len(suite.T(), found.OrderItems, 1)

	updated, err := suite.productRepo.GetProductByID(context.Background(), product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), uint(3), updated.Stock)
}

func (suite *OrderRepoTestSuite) TestPlaceOrderInsufficientStockRollsBack() {
	buyer := suite.createTestBuyer()
	a := suite.createTestProduct("A", "10.00", 5)
	b := suite.createTestProduct("B", "5.00", 1)

	order := suite.buildOrder(buyer, orderLine(a, 2), orderLine(b, 3))
	err := suite.orderRepo.PlaceOrder(context.Background(), order)
	require.ErrorIs(suite.T(), err, ErrProductStockNotEnough)

	// 整筆回滾: 訂單不存在, A的庫存也不動
	_, err = suite.orderRepo.GetOrderByID(context.Background(), order.OrderID)
	require.ErrorIs(suite.T(), err, ErrOrderNotFound)

	updated, err := suite.productRepo.GetProductByID(context.Background(), a.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), uint(5), updated.Stock)
}

func (suite *OrderRepoTestSuite) TestMarkOrderPaidCAS() {
	buyer := suite.createTestBuyer()
	product := suite.createTestProduct("A", "10.00", 5)
	order := suite.buildOrder(buyer, orderLine(product, 1))
	require.NoError(suite.T(), suite.orderRepo.PlaceOrder(context.Background(), order))

	paidAt := time.Now().UTC()
	applied, err := suite.orderRepo.MarkOrderPaid(context.Background(), order.OrderID, "MP_TEST_1", paidAt)
	require.NoError(suite.T(), err)
	require.True(suite.T(), applied)

	// 第二次是no-op
	applied, err = suite.orderRepo.MarkOrderPaid(context.Background(), order.OrderID, "MP_TEST_1", paidAt)
	require.NoError(suite.T(), err)
	require.False(suite.T(), applied)

	found, err := suite.orderRepo.GetOrderByID(context.Background(), order.OrderID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), model.OrderStatusPaid, found.Status)
	require.Equal(suite.T(), "MP_TEST_1", found.PaymentReference)
	require.NotNil(suite.T(), found.PaidAt)
}

func (suite *OrderRepoTestSuite) TestHardDeleteOrderRestoresStock() {
	buyer := suite.createTestBuyer()
	product := suite.createTestProduct("A", "10.00", 2)
	order := suite.buildOrder(buyer, orderLine(product, 2))
	require.NoError(suite.T(), suite.orderRepo.PlaceOrder(context.Background(), order))

	// 賣光後轉sold
	sold, err := suite.productRepo.GetProductByID(context.Background(), product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), model.ProductStatusSold, sold.Status)

	require.NoError(suite.T(), suite.orderRepo.HardDeleteOrder(context.Background(), order.OrderID))

	_, err = suite.orderRepo.GetOrderByID(context.Background(), order.OrderID)
	require.ErrorIs(suite.T(), err, ErrOrderNotFound)

	restored, err := suite.productRepo.GetProductByID(context.Background(), product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), uint(2), restored.Stock)
	require.Equal(suite.T(), model.ProductStatusActive, restored.Status)
}

func (suite *OrderRepoTestSuite) TestGetOrderItemsBySellerID() {
	buyer := suite.createTestBuyer()
	a := suite.createTestProduct("A", "10.00", 5)
	b := suite.createTestProduct("B", "5.00", 5)

	order := suite.buildOrder(buyer, orderLine(a, 1), orderLine(b, 2))
	require.NoError(suite.T(), suite.orderRepo.PlaceOrder(context.Background(), order))

	items, err := suite.orderRepo.GetOrderItemsBySellerID(context.Background(), a.SellerID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), items, 1)
	require.Equal(suite.T(), a.ProductID, items[0].ProductID)
}

func (suite *OrderRepoTestSuite) TestGetOrdersPaginated() {
	buyer := suite.createTestBuyer()
	product := suite.createTestProduct("A", "10.00", 10)

	for i := 0; i < 5; i++ {
		order := suite.buildOrder(buyer, orderLine(product, 1))
		require.NoError(suite.T(), suite.orderRepo.PlaceOrder(context.Background(), order))
	}

	orders, total, err := suite.orderRepo.GetOrdersPaginated(context.Background(), 1, 3)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(5), total)
	require.Len(suite.T(), orders, 3)
}

func TestOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepoTestSuite))
}

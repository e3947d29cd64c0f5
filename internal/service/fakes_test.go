package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/marketplace/internal/domain/model"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/gateway"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/producer"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/repository/redis_repo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// in-memory fakes, 行為對齊repo層的語意 (CAS / 條件扣庫存 / clamp)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uint]*model.Product
	nextID   uint
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[uint]*model.Product{}, nextID: 1}
}

func (r *fakeProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ProductID == 0 {
		product.ProductID = r.nextID
		r.nextID++
	}
	clone := *product
	r.products[product.ProductID] = &clone
	return nil
}

func (r *fakeProductRepo) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return nil, db.ErrProductNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProductRepo) ListProducts(ctx context.Context, filter db.ListFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ProductID]; !ok {
		return db.ErrProductNotFound
	}
	clone := *product
	r.products[product.ProductID] = &clone
	return nil
}

func (r *fakeProductRepo) DeleteProduct(ctx context.Context, productID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, productID)
	return nil
}

func (r *fakeProductRepo) GetProductStock(ctx context.Context, productID uint) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return 0, db.ErrProductNotFound
	}
	return int(p.Stock), nil
}

func (r *fakeProductRepo) AddProductStock(ctx context.Context, productID uint, quantity uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return db.ErrProductNotFound
	}
	p.Stock += quantity
	if p.Status == model.ProductStatusSold && p.Stock > 0 {
		p.Status = model.ProductStatusActive
	}
	return nil
}

func (r *fakeProductRepo) DeductProductStock(ctx context.Context, productID uint, quantity uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deductLocked(productID, quantity)
}

func (r *fakeProductRepo) deductLocked(productID uint, quantity uint) error {
	p, ok := r.products[productID]
	if !ok {
		return db.ErrProductNotFound
	}
	if p.Stock < quantity {
		return db.ErrProductStockNotEnough
	}
	p.Stock -= quantity
	if p.Stock == 0 {
		p.Status = model.ProductStatusSold
	}
	return nil
}

var _ db.IProductRepository = (*fakeProductRepo)(nil)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[uint]*model.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*model.User{}, nextID: 1}
}

func (r *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.UserID == 0 {
		user.UserID = r.nextID
		r.nextID++
	}
	clone := *user
	r.users[user.UserID] = &clone
	return user, nil
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserEmail == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateUser(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.UserID] = &clone
	return nil
}

func (r *fakeUserRepo) PatchUserFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	return nil
}

func (r *fakeUserRepo) DeleteUser(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

var _ db.IUserRepository = (*fakeUserRepo)(nil)

// fakeOrderRepo 模擬PlaceOrder事務語意: 建單同時條件扣庫存, 任一明細不足整單失敗
type fakeOrderRepo struct {
	mu          sync.Mutex
	orders      map[uuid.UUID]*model.Order
	productRepo *fakeProductRepo
	placeErr    error
}

func newFakeOrderRepo(productRepo *fakeProductRepo) *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]*model.Order{}, productRepo: productRepo}
}

func (r *fakeOrderRepo) PlaceOrder(ctx context.Context, order *model.Order) error {
	if r.placeErr != nil {
		return r.placeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.productRepo.mu.Lock()
	defer r.productRepo.mu.Unlock()

	snapshot := map[uint]model.Product{}
	for id, p := range r.productRepo.products {
		snapshot[id] = *p
	}
	for _, item := range order.OrderItems {
		if err := r.productRepo.deductLocked(item.ProductID, uint(item.Quantity)); err != nil {
			// rollback
			for id, p := range snapshot {
				clone := p
				r.productRepo.products[id] = &clone
			}
			return err
		}
	}

	clone := *order
	r.orders[order.OrderID] = &clone
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *fakeOrderRepo) GetOrdersByCustomerID(ctx context.Context, customerID uint) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) MarkOrderPaid(ctx context.Context, id uuid.UUID, reference string, paidAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = model.OrderStatusPaid
	o.PaymentReference = reference
	o.PaidAt = &paidAt
	return true, nil
}

func (r *fakeOrderRepo) MarkOrderCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = model.OrderStatusCancelled
	return true, nil
}

func (r *fakeOrderRepo) HardDeleteOrder(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return db.ErrOrderNotFound
	}
	for _, item := range o.OrderItems {
		_ = r.productRepo.AddProductStock(ctx, item.ProductID, uint(item.Quantity))
	}
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) GetOrderItemsBySellerID(ctx context.Context, sellerID uint) ([]model.OrderItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.OrderItem
	for _, o := range r.orders {
		for _, item := range o.OrderItems {
			if item.SellerID == sellerID {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

var _ db.IOrderRepository = (*fakeOrderRepo)(nil)

// fakePaymentRepo CAS語意與repo層一致: 已successful的確認直接no-op
type fakePaymentRepo struct {
	mu        sync.Mutex
	payments  map[string]*model.Payment
	histories map[string][]model.PaymentHistory
	orderRepo *fakeOrderRepo
	createErr error
}

func newFakePaymentRepo(orderRepo *fakeOrderRepo) *fakePaymentRepo {
	return &fakePaymentRepo{
		payments:  map[string]*model.Payment{},
		histories: map[string][]model.PaymentHistory{},
		orderRepo: orderRepo,
	}
}

func (r *fakePaymentRepo) CreatePayment(ctx context.Context, payment *model.Payment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *payment
	r.payments[payment.Reference] = &clone
	r.histories[payment.Reference] = append(r.histories[payment.Reference], model.PaymentHistory{
		PaymentID: payment.PaymentID,
		Status:    model.PaymentStatusPending,
		Notes:     "payment created",
	})
	return nil
}

func (r *fakePaymentRepo) GetPaymentByReference(ctx context.Context, reference string) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[reference]
	if !ok {
		return nil, db.ErrPaymentNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *fakePaymentRepo) GetPaymentsByOrderID(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) GetPaymentHistories(ctx context.Context, reference string) ([]model.PaymentHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.PaymentHistory(nil), r.histories[reference]...), nil
}

func (r *fakePaymentRepo) ConfirmPaymentSuccess(ctx context.Context, reference string, gatewayReference string, gatewayResponse json.RawMessage, paidAt time.Time) (bool, error) {
	r.mu.Lock()
	p, ok := r.payments[reference]
	if !ok {
		r.mu.Unlock()
		return false, db.ErrPaymentNotFound
	}
	if p.Status == model.PaymentStatusSuccessful {
		r.mu.Unlock()
		return false, nil
	}
	p.Status = model.PaymentStatusSuccessful
	p.GatewayReference = gatewayReference
	p.GatewayResponse = gatewayResponse
	p.PaidAt = &paidAt
	r.histories[reference] = append(r.histories[reference], model.PaymentHistory{
		PaymentID: p.PaymentID,
		Status:    model.PaymentStatusSuccessful,
		Notes:     "payment confirmed",
	})
	orderID := p.OrderID
	r.mu.Unlock()

	_, err := r.orderRepo.MarkOrderPaid(ctx, orderID, reference, paidAt)
	return true, err
}

func (r *fakePaymentRepo) ConfirmPaymentFailure(ctx context.Context, reference string, gatewayResponse json.RawMessage) (bool, error) {
	r.mu.Lock()
	p, ok := r.payments[reference]
	if !ok {
		r.mu.Unlock()
		return false, db.ErrPaymentNotFound
	}
	if p.Status != model.PaymentStatusPending {
		r.mu.Unlock()
		return false, nil
	}
	p.Status = model.PaymentStatusFailed
	p.GatewayResponse = gatewayResponse
	r.histories[reference] = append(r.histories[reference], model.PaymentHistory{
		PaymentID: p.PaymentID,
		Status:    model.PaymentStatusFailed,
		Notes:     "payment failed",
	})
	orderID := p.OrderID
	r.mu.Unlock()

	_, err := r.orderRepo.MarkOrderCancelled(ctx, orderID)
	return true, err
}

var _ db.IPaymentRepository = (*fakePaymentRepo)(nil)

// fakeCartRepo 用map重現redis hash + lua clamp行為
type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[uint]map[uint]int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[uint]map[uint]int{}}
}

func (r *fakeCartRepo) Get(ctx context.Context, userID uint) (*model.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := &model.Cart{UserID: userID}
	for productID, quantity := range r.carts[userID] {
		if quantity > 0 {
			cart.Items = append(cart.Items, model.CartItem{ProductID: productID, Quantity: quantity})
		}
	}
	return cart, nil
}

func (r *fakeCartRepo) AddQuantity(ctx context.Context, userID uint, productID uint, delta int, maxQuantity int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.carts[userID]
	if items == nil {
		items = map[uint]int{}
		r.carts[userID] = items
	}
	next := items[productID] + delta
	if next <= 0 {
		delete(items, productID)
		return 0, nil
	}
	if next > maxQuantity {
		next = maxQuantity
	}
	items[productID] = next
	return next, nil
}

func (r *fakeCartRepo) SetQuantity(ctx context.Context, userID uint, productID uint, quantity int, maxQuantity int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.carts[userID]
	if items == nil {
		items = map[uint]int{}
		r.carts[userID] = items
	}
	if quantity <= 0 {
		delete(items, productID)
		return 0, nil
	}
	if quantity > maxQuantity {
		quantity = maxQuantity
	}
	items[productID] = quantity
	return quantity, nil
}

func (r *fakeCartRepo) Remove(ctx context.Context, userID uint, productID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts[userID], productID)
	return nil
}

func (r *fakeCartRepo) Clear(ctx context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

var _ redis_repo.ICartRepository = (*fakeCartRepo)(nil)

type fakeGateway struct {
	initErr      error
	initRequests []gateway.InitializeRequest
	verifyErr    error
	verifyStatus string
}

func (g *fakeGateway) InitializeTransaction(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeData, error) {
	g.initRequests = append(g.initRequests, req)
	if g.initErr != nil {
		return nil, g.initErr
	}
	return &gateway.InitializeData{
		AuthorizationURL: "https://checkout.example.com/" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *fakeGateway) VerifyTransaction(ctx context.Context, reference string) (*gateway.VerifyData, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	status := g.verifyStatus
	if status == "" {
		status = "success"
	}
	return &gateway.VerifyData{
		Status:     status,
		Reference:  reference,
		GatewayRef: reference,
		Raw:        json.RawMessage(`{"status":"` + status + `"}`),
	}, nil
}

func (g *fakeGateway) VerifyWebhookSignature(body []byte, signature string) bool {
	return true
}

var _ gateway.IPaymentGateway = (*fakeGateway)(nil)

type publishedEvent struct {
	eventType string
	orderID   string
	userID    uint
	reference string
}

type fakeProducer struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakeProducer) record(eventType, orderID string, userID uint, reference string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, orderID: orderID, userID: userID, reference: reference})
}

func (p *fakeProducer) PublishOrderCreated(ctx context.Context, orderID string, userID uint, amount decimal.Decimal) error {
	p.record("order.created", orderID, userID, "")
	return nil
}

func (p *fakeProducer) PublishOrderCompensated(ctx context.Context, orderID string, userID uint, reason string) error {
	p.record("order.compensated", orderID, userID, "")
	return nil
}

func (p *fakeProducer) PublishPaymentSucceeded(ctx context.Context, orderID string, userID uint, reference string, amount decimal.Decimal) error {
	p.record("payment.succeeded", orderID, userID, reference)
	return nil
}

func (p *fakeProducer) PublishPaymentFailed(ctx context.Context, orderID string, userID uint, reference string) error {
	p.record("payment.failed", orderID, userID, reference)
	return nil
}

func (p *fakeProducer) Close() error { return nil }

var _ producer.IOrderEventProducer = (*fakeProducer)(nil)

func (p *fakeProducer) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.eventType)
	}
	return out
}

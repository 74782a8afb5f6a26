package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/ikkim/teashop-backend/internal/app/repository"
	"github.com/ikkim/teashop-backend/internal/db"
	"github.com/ikkim/teashop-backend/internal/export"
	"github.com/ikkim/teashop-backend/pkg/payment/razorpay"
	"github.com/ikkim/teashop-backend/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	restore := util.SetHashCostForTesting(4)
	t.Cleanup(restore)
	return testDB
}

func createTestUser(t *testing.T, testDB *gorm.DB, username string) *model.User {
	t.Helper()
	hash, err := util.HashPassword("password123")
	require.NoError(t, err)

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     "Test " + username,
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, testDB *gorm.DB, name, price string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:          name,
		Description:   name + " loose leaf",
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Category:      "Black Tea",
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func reloadProduct(t *testing.T, testDB *gorm.DB, id uint) *model.Product {
	t.Helper()
	var p model.Product
	require.NoError(t, testDB.First(&p, id).Error)
	return &p
}

func reloadOrder(t *testing.T, testDB *gorm.DB, id uint) *model.Order {
	t.Helper()
	var o model.Order
	require.NoError(t, testDB.First(&o, id).Error)
	return &o
}

// testServices wires the real services over one sqlite database.
type testServices struct {
	db        *gorm.DB
	carts     CartService
	orders    OrderService
	payments  PaymentService
	reviews   ReviewService
	products  ProductService
	mailer    *fakeMailer
	events    *fakePublisher
	gateway   *fakeGateway
	blobs     *memoryBlobs
	orderRepo repository.OrderRepository
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()
	testDB := setupTestDB(t)

	productRepo := repository.NewProductRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)

	ts := &testServices{
		db:        testDB,
		mailer:    &fakeMailer{},
		events:    &fakePublisher{},
		gateway:   &fakeGateway{verified: true},
		blobs:     newMemoryBlobs(),
		orderRepo: orderRepo,
	}
	ts.carts = NewCartService(testDB, repository.NewCartRepository(testDB), productRepo)
	ts.orders = NewOrderService(
		testDB,
		orderRepo,
		ts.carts,
		NewNotificationService(ts.mailer, "shop@example.com"),
		ts.events,
		export.NewExcelOrderExporter(),
	)
	ts.payments = NewPaymentService(ts.gateway, ts.orders, "")
	ts.reviews = NewReviewService(testDB, repository.NewReviewRepository(testDB), productRepo)
	ts.products = NewProductService(testDB, productRepo, ts.blobs)
	return ts
}

func validOrderInput(amount string) CreateOrderInput {
	return CreateOrderInput{
		CustomerName:    "Asha Rao",
		CustomerPhone:   "9876543210",
		CustomerEmail:   "asha@example.com",
		DeliveryAddress: "12 Tea Garden Road, Darjeeling",
		PaymentMethod:   "RAZORPAY",
		Amount:          decimal.RequireFromString(amount),
		ProductsOrdered: "Darjeeling First Flush x2",
	}
}

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *fakeMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

type publishedEvent struct {
	UserID uint
	Event  OrderEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) PublishToUser(userID uint, event OrderEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Event: event})
}

func (p *fakePublisher) Events() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type fakeGateway struct {
	verified  bool
	verifyErr error
	panics    bool
	createErr error
	created   []razorpay.CreateOrderRequest
	payment   *razorpay.Payment
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req razorpay.CreateOrderRequest) (*razorpay.Order, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, req)
	return &razorpay.Order{
		ID:       "order_test123",
		Entity:   "order",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
		Notes:    req.Notes,
	}, nil
}

func (g *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error) {
	if g.payment == nil {
		return nil, errors.New("payment lookup unavailable")
	}
	return g.payment, nil
}

func (g *fakeGateway) VerifyPaymentSignature(orderID, paymentID, signature string) (bool, error) {
	if g.panics {
		panic("hmac exploded")
	}
	return g.verified, g.verifyErr
}

type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{objects: make(map[string][]byte)}
}

func (b *memoryBlobs) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return key, nil
}

func (b *memoryBlobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	b.deleted = append(b.deleted, key)
	return nil
}

func (b *memoryBlobs) URL(key string) string {
	return "https://cdn.example.com/" + key
}

func (b *memoryBlobs) Has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

type fakeRevoker struct {
	revoked map[string]time.Duration
	err     error
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Duration)}
}

func (r *fakeRevoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if r.err != nil {
		return r.err
	}
	r.revoked[token] = ttl
	return nil
}

func (r *fakeRevoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[token]
	return ok, nil
}

package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/ikkim/teashop-backend/internal/app/repository"
	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/db"
	apperrors "github.com/ikkim/teashop-backend/internal/errors"
	"github.com/ikkim/teashop-backend/internal/export"
	"github.com/ikkim/teashop-backend/internal/middleware"
	"github.com/ikkim/teashop-backend/pkg/payment/razorpay"
	"github.com/ikkim/teashop-backend/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type testEnv struct {
	db      *gorm.DB
	auth    *middleware.AuthMiddleware
	gateway *stubGateway
	mailer  *stubMailer
	blobs   *stubBlobs

	authService    service.AuthService
	userService    service.UserService
	productService service.ProductService
	cartService    service.CartService
	orderService   service.OrderService
	paymentService service.PaymentService
	reviewService  service.ReviewService
	notifications  service.NotificationService
}

func setupControllerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	apperrors.UseJSONFieldNames()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	t.Cleanup(util.SetHashCostForTesting(4))

	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)

	env := &testEnv{
		db:      testDB,
		auth:    middleware.NewAuthMiddleware(testSecret, nil),
		gateway: &stubGateway{verified: true},
		mailer:  &stubMailer{},
		blobs:   &stubBlobs{objects: map[string][]byte{}},
	}
	env.notifications = service.NewNotificationService(env.mailer, "shop@example.com")
	env.authService = service.NewAuthService(userRepo, nil, testSecret, 15*time.Minute, time.Hour)
	env.userService = service.NewUserService(userRepo)
	env.productService = service.NewProductService(testDB, productRepo, env.blobs)
	env.cartService = service.NewCartService(testDB, repository.NewCartRepository(testDB), productRepo)
	env.orderService = service.NewOrderService(
		testDB,
		repository.NewOrderRepository(testDB),
		env.cartService,
		env.notifications,
		nil,
		export.NewExcelOrderExporter(),
	)
	env.paymentService = service.NewPaymentService(env.gateway, env.orderService, "INR")
	env.reviewService = service.NewReviewService(testDB, repository.NewReviewRepository(testDB), productRepo)
	return env
}

func (env *testEnv) createUser(t *testing.T, username string, role model.UserRole) (*model.User, string) {
	t.Helper()
	hash, err := util.HashPassword("password123")
	require.NoError(t, err)

	user := &model.User{Username: username, PasswordHash: hash, Role: role}
	require.NoError(t, env.db.Create(user).Error)

	tokens, err := util.GenerateTokenPair(user.ID, user.Username, string(user.Role), testSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return user, tokens.AccessToken
}

func (env *testEnv) createProduct(t *testing.T, name, price string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Category:      "Black Tea",
	}
	require.NoError(t, env.db.Create(product).Error)
	return product
}

func performRequest(router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

type stubGateway struct {
	verified  bool
	createErr error
}

func (g *stubGateway) CreateOrder(ctx context.Context, req razorpay.CreateOrderRequest) (*razorpay.Order, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &razorpay.Order{ID: "order_stub", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

func (g *stubGateway) FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error) {
	if paymentID == "pay_missing" {
		return nil, errors.New("BAD_REQUEST_ERROR: payment not found")
	}
	return &razorpay.Payment{ID: paymentID, Status: "captured"}, nil
}

func (g *stubGateway) VerifyPaymentSignature(orderID, paymentID, signature string) (bool, error) {
	return g.verified, nil
}

type stubMailer struct {
	sent int
}

func (m *stubMailer) Send(to, subject, body string) error {
	m.sent++
	return nil
}

type stubBlobs struct {
	objects map[string][]byte
}

func (b *stubBlobs) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	b.objects[key] = data
	return key, nil
}

func (b *stubBlobs) Delete(ctx context.Context, key string) error {
	delete(b.objects, key)
	return nil
}

func (b *stubBlobs) URL(key string) string {
	return "/static/" + key
}

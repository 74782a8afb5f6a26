package repository

import (
	"testing"
	"time"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestOrder(userID *uint, at time.Time) *model.Order {
	return &model.Order{
		UserID:          userID,
		CustomerName:    "Asha",
		CustomerPhone:   "9800000000",
		DeliveryAddress: "12 Tea Garden Road",
		ProductsOrdered: "Assam x2",
		PaymentMethod:   "razorpay",
		Amount:          decimal.RequireFromString("480.00"),
		Status:          model.OrderStatusPaymentPending,
		OrderDate:       at,
	}
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewOrderRepository(testDB)
	user := createTestUser(t, testDB, "asha")

	order := newTestOrder(&user.ID, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(order))
	assert.NotZero(t, order.ID)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaymentPending, found.Status)
	assert.True(t, order.Amount.Equal(found.Amount))
	require.NotNil(t, found.User)
	assert.Equal(t, "asha", found.CustomerLabel())

	guest := newTestOrder(nil, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(guest))
	foundGuest, err := repo.FindByID(guest.ID)
	require.NoError(t, err)
	assert.True(t, foundGuest.IsGuest())
	assert.Equal(t, "Guest", foundGuest.CustomerLabel())

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_FindByUserIDNewestFirst(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewOrderRepository(testDB)
	user := createTestUser(t, testDB, "asha")

	older := newTestOrder(&user.ID, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	newer := newTestOrder(&user.ID, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(older))
	require.NoError(t, repo.Create(newer))
	require.NoError(t, repo.Create(newTestOrder(nil, time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))))

	orders, err := repo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, newer.ID, orders[0].ID)
	assert.Equal(t, older.ID, orders[1].ID)
}

func TestOrderRepository_FindByDateRange(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewOrderRepository(testDB)

	day := func(d, h int) time.Time { return time.Date(2026, 3, d, h, 0, 0, 0, time.UTC) }
	for _, at := range []time.Time{day(1, 9), day(2, 0), day(2, 23), day(3, 12)} {
		require.NoError(t, repo.Create(newTestOrder(nil, at)))
	}

	from := day(2, 0)
	to := time.Date(2026, 3, 2, 23, 59, 59, 999999999, time.UTC)
	orders, err := repo.FindByDateRange(&from, &to)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.True(t, orders[0].OrderDate.After(orders[1].OrderDate))

	all, err := repo.FindByDateRange(nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewOrderRepository(testDB)

	order := newTestOrder(nil, time.Now().UTC())
	require.NoError(t, repo.Create(order))

	require.NoError(t, repo.UpdateStatus(order.ID, model.OrderStatusShipped))
	found, err := repo.FindByIDForUpdate(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, found.Status)

	found.GatewayPaymentID = "pay_1"
	require.NoError(t, repo.Update(found))
	reloaded, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay_1", reloaded.GatewayPaymentID)

	assert.ErrorIs(t, repo.UpdateStatus(9999, model.OrderStatusShipped), gorm.ErrRecordNotFound)
}

package repository

import (
	"testing"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCartRepository_FindOrCreateCartIsLazyAndStable(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewCartRepository(testDB)
	user := createTestUser(t, testDB, "asha")

	_, err := repo.FindCartByUserID(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	first, err := repo.FindOrCreateCart(user.ID)
	require.NoError(t, err)
	second, err := repo.FindOrCreateCart(user.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCartRepository_SaveItemUpsertsByProduct(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewCartRepository(testDB)
	user := createTestUser(t, testDB, "asha")
	product := createTestProduct(t, testDB, "Assam", "240", 10)

	cart, err := repo.FindOrCreateCart(user.ID)
	require.NoError(t, err)

	item := &model.CartItem{CartID: cart.ID, UserID: user.ID, ProductID: product.ID, Quantity: 2}
	require.NoError(t, repo.SaveItem(item))

	existing, err := repo.FindItem(cart.ID, product.ID)
	require.NoError(t, err)
	existing.Quantity = 5
	require.NoError(t, repo.SaveItem(existing))

	loaded, err := repo.FindCartByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 5, loaded.Items[0].Quantity)
	assert.Equal(t, "Assam", loaded.Items[0].Product.Name)
	assert.Equal(t, "asha", loaded.User.Username)

	duplicate := &model.CartItem{CartID: cart.ID, UserID: user.ID, ProductID: product.ID, Quantity: 1}
	assert.Error(t, repo.SaveItem(duplicate))
}

func TestCartRepository_DeleteItems(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewCartRepository(testDB)
	user := createTestUser(t, testDB, "asha")
	other := createTestUser(t, testDB, "ravi")
	p1 := createTestProduct(t, testDB, "Assam", "240", 10)
	p2 := createTestProduct(t, testDB, "Nilgiri", "380", 10)

	cart, err := repo.FindOrCreateCart(user.ID)
	require.NoError(t, err)
	otherCart, err := repo.FindOrCreateCart(other.ID)
	require.NoError(t, err)

	item := &model.CartItem{CartID: cart.ID, UserID: user.ID, ProductID: p1.ID, Quantity: 1}
	require.NoError(t, repo.SaveItem(item))
	require.NoError(t, repo.SaveItem(&model.CartItem{CartID: cart.ID, UserID: user.ID, ProductID: p2.ID, Quantity: 1}))
	require.NoError(t, repo.SaveItem(&model.CartItem{CartID: otherCart.ID, UserID: other.ID, ProductID: p1.ID, Quantity: 1}))

	require.NoError(t, repo.DeleteItem(item.ID))
	_, err = repo.FindItem(cart.ID, p1.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	deleted, err := repo.DeleteItemsByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = repo.DeleteItemsByUserID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	otherLoaded, err := repo.FindCartByUserID(other.ID)
	require.NoError(t, err)
	assert.Len(t, otherLoaded.Items, 1)
}

func TestCartRepository_WithTxRollsBack(t *testing.T) {
	testDB := setupTestDB(t)
	repo := NewCartRepository(testDB)
	user := createTestUser(t, testDB, "asha")
	product := createTestProduct(t, testDB, "Assam", "240", 10)

	cart, err := repo.FindOrCreateCart(user.ID)
	require.NoError(t, err)

	txErr := testDB.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).SaveItem(&model.CartItem{CartID: cart.ID, UserID: user.ID, ProductID: product.ID, Quantity: 1}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, txErr, assert.AnError)

	loaded, err := repo.FindCartByUserID(user.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Items)
}

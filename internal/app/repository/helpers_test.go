package repository

import (
	"testing"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/ikkim/teashop-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createTestUser(t *testing.T, testDB *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		PasswordHash: "hash",
		FullName:     "Test " + username,
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, testDB *gorm.DB, name string, price string, stock int) *model.Product {
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

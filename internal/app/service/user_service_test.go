package service

import (
	"context"
	"testing"

	"github.com/ikkim/teashop-backend/internal/app/repository"
	"github.com/ikkim/teashop-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserService_UpdateProfile(t *testing.T) {
	testDB := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(testDB))
	ctx := context.Background()

	alice := createTestUser(t, testDB, "alice")
	bob := createTestUser(t, testDB, "bob")

	_, err := svc.UpdateProfile(ctx, bob.ID, ProfileInput{Email: strPtr("bob@example.com")})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, alice.ID, ProfileInput{
		FullName:    strPtr(" Alice Tea "),
		Email:       strPtr("Alice@Example.com"),
		PhoneNumber: strPtr("9000000000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Tea", updated.FullName)
	assert.Equal(t, "alice@example.com", updated.EmailValue())
	assert.Equal(t, "9000000000", updated.PhoneNumber)

	_, err = svc.UpdateProfile(ctx, alice.ID, ProfileInput{Email: strPtr("BOB@example.com")})
	assert.ErrorIs(t, err, ErrEmailExists)

	cleared, err := svc.UpdateProfile(ctx, alice.ID, ProfileInput{Email: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.Email)
	assert.Equal(t, "Alice Tea", cleared.FullName)

	_, err = svc.UpdateProfile(ctx, 9999, ProfileInput{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ChangePassword(t *testing.T) {
	testDB := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(testDB))
	ctx := context.Background()
	user := createTestUser(t, testDB, "alice")

	err := svc.ChangePassword(ctx, user.ID, "not-my-password", "newpassword456")
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(ctx, user.ID, "password123", "1")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "password123", "newpassword456"))

	stored, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, util.VerifyPassword(stored.PasswordHash, "newpassword456"))
	assert.False(t, util.VerifyPassword(stored.PasswordHash, "password123"))
}

func TestUserService_AdminOperations(t *testing.T) {
	testDB := setupTestDB(t)
	svc := NewUserService(repository.NewUserRepository(testDB))
	ctx := context.Background()

	alice := createTestUser(t, testDB, "alice")
	createTestUser(t, testDB, "bob")

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	got, err := svc.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, svc.Delete(ctx, alice.ID))
	_, err = svc.GetMe(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, alice.ID), ErrUserNotFound)
}

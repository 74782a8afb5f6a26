package controller

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/model"
	apperrors "github.com/ikkim/teashop-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(env *testEnv) *gin.Engine {
	authCtrl := NewAuthController(env.authService)
	userCtrl := NewUserController(env.userService)

	router := gin.New()
	router.POST("/register", authCtrl.Register)
	router.POST("/login", authCtrl.Login)
	router.POST("/refresh", authCtrl.Refresh)
	router.POST("/logout", env.auth.Authenticate(), authCtrl.Logout)
	router.GET("/me", env.auth.Authenticate(), userCtrl.GetMe)
	router.PUT("/me", env.auth.Authenticate(), userCtrl.UpdateMe)
	router.POST("/change-password", env.auth.Authenticate(), userCtrl.ChangePassword)
	router.GET("/users", env.auth.Authenticate(), env.auth.RequireRole(model.RoleAdmin), userCtrl.ListUsers)
	return router
}

func TestAuthController_RegisterAndMe(t *testing.T) {
	env := setupControllerTest(t)
	router := setupAuthRouter(env)

	w := performRequest(router, http.MethodPost, "/register", RegisterRequest{
		Username: "leafy",
		Password: "password123",
		Email:    "leafy@example.com",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "leafy", user["username"])
	assert.Equal(t, "USER", user["role"])
	assert.NotContains(t, user, "password_hash")

	tokens := body["tokens"].(map[string]interface{})
	access := tokens["access_token"].(string)

	w = performRequest(router, http.MethodGet, "/me", nil, access)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "leafy", decodeBody(t, w)["user"].(map[string]interface{})["username"])
}

func TestAuthController_RegisterConflictAndValidation(t *testing.T) {
	env := setupControllerTest(t)
	router := setupAuthRouter(env)
	env.createUser(t, "taken", model.RoleUser)

	w := performRequest(router, http.MethodPost, "/register", RegisterRequest{Username: "taken", Password: "password123"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.AuthUsernameExists, decodeBody(t, w)["error"])

	w = performRequest(router, http.MethodPost, "/register", map[string]string{"username": "ab", "password": "short"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, apperrors.ValidationInvalidInput, body["error"])
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
}

func TestAuthController_Login(t *testing.T) {
	env := setupControllerTest(t)
	router := setupAuthRouter(env)
	env.createUser(t, "brewer", model.RoleUser)

	w := performRequest(router, http.MethodPost, "/login", LoginRequest{Username: "brewer", Password: "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	refresh := decodeBody(t, w)["tokens"].(map[string]interface{})["refresh_token"].(string)

	w = performRequest(router, http.MethodPost, "/login", LoginRequest{Username: "brewer", Password: "nope-nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.AuthInvalidCredentials, decodeBody(t, w)["error"])

	w = performRequest(router, http.MethodPost, "/refresh", RefreshRequest{RefreshToken: refresh}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["tokens"])

	w = performRequest(router, http.MethodPost, "/refresh", RefreshRequest{RefreshToken: "junk"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthController_LogoutRequiresToken(t *testing.T) {
	env := setupControllerTest(t)
	router := setupAuthRouter(env)
	_, token := env.createUser(t, "brewer", model.RoleUser)

	w := performRequest(router, http.MethodPost, "/logout", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = performRequest(router, http.MethodPost, "/logout", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserController_UpdateMeAndPassword(t *testing.T) {
	env := setupControllerTest(t)
	router := setupAuthRouter(env)
	other, _ := env.createUser(t, "other", model.RoleUser)
	email := "other@example.com"
	other.Email = &email
	require.NoError(t, env.db.Save(other).Error)
	_, token := env.createUser(t, "alice", model.RoleUser)

	w := performRequest(router, http.MethodPut, "/me", map[string]string{"full_name": "Alice"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice", decodeBody(t, w)["user"].(map[string]interface{})["full_name"])

	w = performRequest(router, http.MethodPut, "/me", map[string]string{"email": "other@example.com"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.AuthEmailAlreadyExists, decodeBody(t, w)["error"])

	w = performRequest(router, http.MethodPost, "/change-password", map[string]string{
		"old_password": "wrong-password",
		"new_password": "newpassword456",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.AuthWrongPassword, decodeBody(t, w)["error"])

	w = performRequest(router, http.MethodPost, "/change-password", map[string]string{
		"old_password": "password123",
		"new_password": "newpassword456",
	}, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserController_AdminOnlyList(t *testing.T) {
	env := setupControllerTest(t)
	router := setupAuthRouter(env)
	_, userToken := env.createUser(t, "alice", model.RoleUser)
	_, adminToken := env.createUser(t, "root", model.RoleAdmin)

	w := performRequest(router, http.MethodGet, "/users", nil, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(router, http.MethodGet, "/users", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeBody(t, w)["count"])
}

package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/model"
	apperrors "github.com/ikkim/teashop-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartRouter(env *testEnv) *gin.Engine {
	ctrl := NewCartController(env.cartService)

	router := gin.New()
	cart := router.Group("/cart", env.auth.Authenticate())
	cart.GET("", ctrl.GetCart)
	cart.DELETE("", ctrl.ClearCart)
	cart.POST("/items/:productId", ctrl.AddItem)
	cart.PUT("/items/:productId", ctrl.UpdateItem)
	cart.DELETE("/items/:productId", ctrl.RemoveItem)
	return router
}

func cartItems(t *testing.T, body map[string]interface{}) []interface{} {
	t.Helper()
	items, ok := body["items"].([]interface{})
	require.True(t, ok, "items missing from %v", body)
	return items
}

func TestCartController_Flow(t *testing.T) {
	env := setupControllerTest(t)
	router := setupCartRouter(env)
	_, token := env.createUser(t, "buyer", model.RoleUser)
	product := env.createProduct(t, "Assam", "250.00", 5)
	itemPath := fmt.Sprintf("/cart/items/%d", product.ID)

	w := performRequest(router, http.MethodPost, itemPath, nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := cartItems(t, decodeBody(t, w))
	require.Len(t, items, 1)
	assert.Equal(t, float64(1), items[0].(map[string]interface{})["quantity"])

	w = performRequest(router, http.MethodPost, itemPath+"?quantity=2", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(3), cartItems(t, body)[0].(map[string]interface{})["quantity"])
	assert.Equal(t, "750", body["total_amount"])

	w = performRequest(router, http.MethodPost, itemPath+"?quantity=3", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CartInsufficientStock, decodeBody(t, w)["error"])

	w = performRequest(router, http.MethodPut, itemPath+"?quantity=5", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), cartItems(t, decodeBody(t, w))[0].(map[string]interface{})["quantity"])

	w = performRequest(router, http.MethodPut, itemPath+"?quantity=0", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cartItems(t, decodeBody(t, w)))

	w = performRequest(router, http.MethodDelete, "/cart", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cartItems(t, decodeBody(t, w)))
}

func TestCartController_Rejections(t *testing.T) {
	env := setupControllerTest(t)
	router := setupCartRouter(env)
	_, token := env.createUser(t, "buyer", model.RoleUser)
	product := env.createProduct(t, "Assam", "250.00", 5)
	itemPath := fmt.Sprintf("/cart/items/%d", product.ID)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{"no token", http.MethodGet, "/cart", "", http.StatusUnauthorized, apperrors.AuthUnauthorized},
		{"unknown product", http.MethodPost, "/cart/items/9999", token, http.StatusNotFound, apperrors.ProductNotFound},
		{"zero quantity add", http.MethodPost, itemPath + "?quantity=0", token, http.StatusBadRequest, apperrors.CartInvalidQuantity},
		{"non numeric quantity", http.MethodPost, itemPath + "?quantity=lots", token, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"update without quantity", http.MethodPut, itemPath, token, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"remove missing line", http.MethodDelete, itemPath, token, http.StatusNotFound, apperrors.CartItemNotFound},
		{"bad product id", http.MethodPost, "/cart/items/abc", token, http.StatusBadRequest, apperrors.ValidationInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, tt.method, tt.path, nil, tt.token)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decodeBody(t, w)["error"])
		})
	}
}

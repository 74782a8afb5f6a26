package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/errors"
	"github.com/ikkim/teashop-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// quantityParam reads ?quantity=. fallback is used when the parameter is
// absent; a negative fallback makes it required.
func quantityParam(c *gin.Context, fallback int) (int, bool) {
	raw, present := c.GetQuery("quantity")
	if !present {
		if fallback < 0 {
			errors.RespondWithValidationError(c, map[string]string{"quantity": "is required"})
			return 0, false
		}
		return fallback, true
	}
	q, err := strconv.Atoi(raw)
	if err != nil {
		errors.RespondWithValidationError(c, map[string]string{"quantity": "must be an integer"})
		return 0, false
	}
	return q, true
}

// GetCart returns user's cart
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	userID := middleware.OptionalUserID(c)

	cart, err := ctrl.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem adds quantity (default 1) of a product
// POST /api/v1/cart/items/:productId?quantity=
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	quantity, ok := quantityParam(c, 1)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.AddItem(c.Request.Context(), userID, productID, quantity)
	if err != nil {
		log.Warn("Add to cart rejected", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"error":      err.Error(),
		})
		respondServiceError(c, err, "cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateItem sets the line quantity; zero or less removes it
// PUT /api/v1/cart/items/:productId?quantity=
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	quantity, ok := quantityParam(c, -1)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.UpdateQuantity(c.Request.Context(), userID, productID, quantity)
	if err != nil {
		respondServiceError(c, err, "cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem
// DELETE /api/v1/cart/items/:productId
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	cart, err := ctrl.cartService.RemoveItem(c.Request.Context(), userID, productID)
	if err != nil {
		respondServiceError(c, err, "cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cart, err := ctrl.cartService.Clear(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

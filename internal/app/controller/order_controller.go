package controller

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/errors"
	"github.com/ikkim/teashop-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

const (
	dateParamLayout = "2006-01-02"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CreateOrderRequest struct {
	CustomerName        string          `json:"customer_name" binding:"required,max=100"`
	CustomerPhone       string          `json:"customer_phone" binding:"required,max=20"`
	CustomerEmail       string          `json:"customer_email" binding:"omitempty,email"`
	ProductsOrdered     string          `json:"products_ordered"`
	DeliveryAddress     string          `json:"delivery_address" binding:"required"`
	SpecialInstructions string          `json:"special_instructions"`
	PaymentMethod       string          `json:"payment_method" binding:"max=50"`
	Amount              decimal.Decimal `json:"amount"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateOrder places an order for a guest or the signed-in user
// POST /api/v1/orders
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid order request", map[string]interface{}{
			"error": err.Error(),
		})
		errors.RespondWithBindingError(c, err)
		return
	}

	order, err := ctrl.orderService.Create(c.Request.Context(), service.CreateOrderInput{
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		CustomerEmail:       req.CustomerEmail,
		DeliveryAddress:     req.DeliveryAddress,
		SpecialInstructions: req.SpecialInstructions,
		PaymentMethod:       req.PaymentMethod,
		Amount:              req.Amount,
		ProductsOrdered:     req.ProductsOrdered,
	}, middleware.OptionalUserID(c))
	if err != nil {
		respondServiceError(c, err, "order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// GetMyOrders
// GET /api/v1/orders/my-orders
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetAllOrders lists orders, optionally between startDate and endDate inclusive
// GET /api/v1/orders (admin)
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	r, ok := parseDateRange(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListAll(c.Request.Context(), r)
	if err != nil {
		respondServiceError(c, err, "order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// UpdateOrderStatus
// PUT /api/v1/orders/:id/status (admin)
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.RespondWithBindingError(c, err)
		return
	}

	order, err := ctrl.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondServiceError(c, err, "order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ExportOrders streams the order list as an xlsx workbook
// GET /api/v1/orders/export (admin)
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	r, ok := parseDateRange(c)
	if !ok {
		return
	}

	data, err := ctrl.orderService.ExportExcel(c.Request.Context(), r)
	if stderrors.Is(err, service.ErrNothingToExport) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		respondServiceError(c, err, "order")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format(dateParamLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// parseDateRange reads startDate and endDate (YYYY-MM-DD). Either may be absent.
func parseDateRange(c *gin.Context) (service.DateRange, bool) {
	var r service.DateRange
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"startDate", &r.Start},
		{"endDate", &r.End},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			errors.BadRequest(c, errors.ValidationInvalidFormat, p.name+" must be formatted as YYYY-MM-DD")
			return service.DateRange{}, false
		}
		*p.dst = &t
	}
	return r, true
}

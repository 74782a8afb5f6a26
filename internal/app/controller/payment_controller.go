package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/errors"
	"github.com/ikkim/teashop-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

type PaymentController struct {
	paymentService service.PaymentService
	keyID          string
}

// NewPaymentController takes the public gateway key id, which checkout needs
// to open the payment widget.
func NewPaymentController(paymentService service.PaymentService, keyID string) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		keyID:          keyID,
	}
}

type CreatePaymentOrderRequest struct {
	AppOrderID uint            `json:"app_order_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
}

type VerifyPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	AppOrderID        uint   `json:"app_order_id" binding:"required"`
}

// CreateOrder opens a gateway order for an application order
// POST /api/v1/payments/create-order
func (ctrl *PaymentController) CreateOrder(c *gin.Context) {
	var req CreatePaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.RespondWithBindingError(c, err)
		return
	}

	order, err := ctrl.paymentService.OpenGatewayOrder(c.Request.Context(), req.AppOrderID, req.Amount)
	if err != nil {
		respondServiceError(c, err, "payment")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key_id": ctrl.keyID,
		"order":  order,
	})
}

// VerifyPayment checks the checkout signature and settles the order
// POST /api/v1/payments/verify-payment
func (ctrl *PaymentController) VerifyPayment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.RespondWithBindingError(c, err)
		return
	}

	verified := ctrl.paymentService.VerifyAndReconcile(c.Request.Context(), service.VerifyPaymentInput{
		PaymentID:      req.RazorpayPaymentID,
		GatewayOrderID: req.RazorpayOrderID,
		Signature:      req.RazorpaySignature,
		AppOrderID:     req.AppOrderID,
	})
	if !verified {
		log.Warn("Payment not verified", map[string]interface{}{
			"app_order_id": req.AppOrderID,
		})
		c.JSON(http.StatusBadRequest, gin.H{
			"verified": false,
			"error":    errors.PaymentNotVerified,
			"message":  "Payment verification failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verified": true,
		"message":  "Payment verified successfully",
	})
}

// GetPayment
// GET /api/v1/payments/:paymentId (admin)
func (ctrl *PaymentController) GetPayment(c *gin.Context) {
	payment, err := ctrl.paymentService.FetchPayment(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		respondServiceError(c, err, "payment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ikkim/teashop-backend/pkg/logger"
	"github.com/ikkim/teashop-backend/pkg/payment/razorpay"
	"github.com/shopspring/decimal"
)

// PaymentGateway is the subset of the Razorpay client the service needs.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req razorpay.CreateOrderRequest) (*razorpay.Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) (bool, error)
}

// VerifyPaymentInput is the proof the checkout widget hands back after payment.
type VerifyPaymentInput struct {
	PaymentID      string
	GatewayOrderID string
	Signature      string
	AppOrderID     uint
}

type PaymentService interface {
	OpenGatewayOrder(ctx context.Context, appOrderID uint, amount decimal.Decimal) (*razorpay.Order, error)
	// VerifyAndReconcile always leaves the order confirmed or failed and
	// reports which. It never returns an error.
	VerifyAndReconcile(ctx context.Context, input VerifyPaymentInput) bool
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error)
}

type paymentService struct {
	gateway  PaymentGateway
	orders   OrderService
	currency string
}

func NewPaymentService(gateway PaymentGateway, orders OrderService, currency string) PaymentService {
	if currency == "" {
		currency = razorpay.DefaultCurrency
	}
	return &paymentService{
		gateway:  gateway,
		orders:   orders,
		currency: currency,
	}
}

// ToMinorUnits converts a major-unit amount (rupees) to paise, rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func (s *paymentService) OpenGatewayOrder(ctx context.Context, appOrderID uint, amount decimal.Decimal) (*razorpay.Order, error) {
	logger.Info("Opening gateway order", map[string]interface{}{
		"app_order_id": appOrderID,
		"amount":       amount.String(),
	})

	if !amount.IsPositive() {
		logger.Warn("Cannot open gateway order: non-positive amount", map[string]interface{}{
			"app_order_id": appOrderID,
			"amount":       amount.String(),
		})
		return nil, ErrInvalidAmount
	}

	appID := strconv.FormatUint(uint64(appOrderID), 10)
	req := razorpay.CreateOrderRequest{
		Amount:         ToMinorUnits(amount),
		Currency:       s.currency,
		Receipt:        razorpay.ReceiptPrefix + appID,
		PaymentCapture: 1,
		Notes:          map[string]string{"app_order_id": appID},
	}

	order, err := s.gateway.CreateOrder(ctx, req)
	if err != nil {
		logger.Error("Gateway order creation failed", err, map[string]interface{}{
			"app_order_id": appOrderID,
		})
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	logger.Info("Gateway order opened", map[string]interface{}{
		"app_order_id":     appOrderID,
		"gateway_order_id": order.ID,
		"amount_minor":     req.Amount,
	})
	return order, nil
}

func (s *paymentService) VerifyAndReconcile(ctx context.Context, input VerifyPaymentInput) (verified bool) {
	fields := map[string]interface{}{
		"app_order_id":     input.AppOrderID,
		"gateway_order_id": input.GatewayOrderID,
		"payment_id":       input.PaymentID,
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Payment verification panicked", fmt.Errorf("%v", r), fields)
			s.failOrder(ctx, input.AppOrderID)
			verified = false
		}
	}()

	logger.Info("Verifying payment", fields)

	ok, err := s.gateway.VerifyPaymentSignature(input.GatewayOrderID, input.PaymentID, input.Signature)
	if err != nil {
		logger.Error("Payment signature check errored", err, fields)
		s.failOrder(ctx, input.AppOrderID)
		return false
	}
	if !ok {
		logger.Warn("Payment signature mismatch", fields)
		s.failOrder(ctx, input.AppOrderID)
		return false
	}

	if _, err := s.orders.Confirm(ctx, input.AppOrderID, input.GatewayOrderID, input.PaymentID); err != nil {
		logger.Error("Verified payment could not be confirmed", err, fields)
		s.failOrder(ctx, input.AppOrderID)
		return false
	}

	logger.Info("Payment verified and order confirmed", fields)
	return true
}

// failOrder drives the order to PAYMENT_FAILED, logging anything that goes wrong.
func (s *paymentService) failOrder(ctx context.Context, orderID uint) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Marking order failed panicked", fmt.Errorf("%v", r), map[string]interface{}{
				"order_id": orderID,
			})
		}
	}()

	if _, err := s.orders.Fail(ctx, orderID); err != nil {
		logger.Error("Failed to mark order as payment failed", err, map[string]interface{}{
			"order_id": orderID,
		})
	}
}

func (s *paymentService) FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, invalidArgument("payment id is required")
	}

	payment, err := s.gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		logger.Error("Failed to fetch payment from gateway", err, map[string]interface{}{
			"payment_id": paymentID,
		})
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return payment, nil
}

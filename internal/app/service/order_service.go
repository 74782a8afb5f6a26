package service

import (
	"context"
	"strings"
	"time"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/ikkim/teashop-backend/internal/app/repository"
	"github.com/ikkim/teashop-backend/internal/export"
	"github.com/ikkim/teashop-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderEvent is pushed to the owning user whenever an order changes status.
type OrderEvent struct {
	Type       string            `json:"type"`
	OrderID    uint              `json:"order_id"`
	Status     model.OrderStatus `json:"status"`
	OccurredAt time.Time         `json:"occurred_at"`
}

const OrderEventStatusChanged = "order.status_changed"

// OrderEventPublisher delivers order events to a connected user, if any.
type OrderEventPublisher interface {
	PublishToUser(userID uint, event OrderEvent)
}

type CreateOrderInput struct {
	CustomerName        string
	CustomerPhone       string
	CustomerEmail       string
	DeliveryAddress     string
	SpecialInstructions string
	PaymentMethod       string
	Amount              decimal.Decimal
	ProductsOrdered     string
}

// DateRange bounds an order listing by calendar day. Both ends are needed to filter.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

type OrderService interface {
	Create(ctx context.Context, input CreateOrderInput, userID *uint) (*model.Order, error)
	Confirm(ctx context.Context, orderID uint, gatewayOrderID, gatewayPaymentID string) (*model.Order, error)
	Fail(ctx context.Context, orderID uint) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status string) (*model.Order, error)
	Get(ctx context.Context, orderID uint) (*model.Order, error)
	ListAll(ctx context.Context, r DateRange) ([]model.Order, error)
	ListForUser(ctx context.Context, userID uint) ([]model.Order, error)
	ExportExcel(ctx context.Context, r DateRange) ([]byte, error)
}

type orderService struct {
	db            *gorm.DB
	orderRepo     repository.OrderRepository
	cartService   CartService
	notifications NotificationService
	events        OrderEventPublisher
	exporter      export.OrderExporter
	now           func() time.Time
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	cartService CartService,
	notifications NotificationService,
	events OrderEventPublisher,
	exporter export.OrderExporter,
) OrderService {
	return &orderService{
		db:            db,
		orderRepo:     orderRepo,
		cartService:   cartService,
		notifications: notifications,
		events:        events,
		exporter:      exporter,
		now:           time.Now,
	}
}

func (s *orderService) Create(ctx context.Context, input CreateOrderInput, userID *uint) (*model.Order, error) {
	logger.Info("Creating order", map[string]interface{}{
		"user_id": userID,
		"amount":  input.Amount.String(),
	})

	if err := validateOrderInput(input); err != nil {
		logger.Warn("Rejected order input", map[string]interface{}{
			"user_id": userID,
			"reason":  err.Error(),
		})
		return nil, err
	}

	order := &model.Order{
		UserID:              userID,
		CustomerName:        strings.TrimSpace(input.CustomerName),
		CustomerPhone:       strings.TrimSpace(input.CustomerPhone),
		CustomerEmail:       strings.TrimSpace(input.CustomerEmail),
		DeliveryAddress:     strings.TrimSpace(input.DeliveryAddress),
		SpecialInstructions: input.SpecialInstructions,
		PaymentMethod:       input.PaymentMethod,
		Amount:              input.Amount,
		ProductsOrdered:     input.ProductsOrdered,
		Status:              model.OrderStatusPaymentPending,
		OrderDate:           s.now(),
	}

	if err := s.orderRepo.WithTx(s.db.WithContext(ctx)).Create(order); err != nil {
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id": order.ID,
		"user_id":  userID,
		"status":   order.Status,
	})
	return order, nil
}

func validateOrderInput(input CreateOrderInput) error {
	switch {
	case input.Amount.IsNegative():
		return invalidArgument("amount must not be negative")
	case strings.TrimSpace(input.CustomerName) == "":
		return invalidArgument("customer name is required")
	case strings.TrimSpace(input.CustomerPhone) == "":
		return invalidArgument("customer phone is required")
	case strings.TrimSpace(input.DeliveryAddress) == "":
		return invalidArgument("delivery address is required")
	}
	return nil
}

// Confirm moves a pending order to ORDER_PLACED and empties the owner's cart
// atomically. Mail and events go out only after commit.
func (s *orderService) Confirm(ctx context.Context, orderID uint, gatewayOrderID, gatewayPaymentID string) (*model.Order, error) {
	logger.Info("Confirming order", map[string]interface{}{
		"order_id":         orderID,
		"gateway_order_id": gatewayOrderID,
	})

	var confirmed *model.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orderRepo.WithTx(tx)

		order, err := orders.FindByIDForUpdate(orderID)
		if err != nil {
			return notFoundAs(err, ErrOrderNotFound)
		}
		if order.Status != model.OrderStatusPaymentPending {
			logger.Warn("Cannot confirm order: not awaiting payment", map[string]interface{}{
				"order_id": orderID,
				"status":   order.Status,
			})
			return ErrOrderNotPending
		}

		order.Status = model.OrderStatusOrderPlaced
		order.GatewayOrderID = gatewayOrderID
		order.GatewayPaymentID = gatewayPaymentID
		if err := orders.Update(order); err != nil {
			return err
		}

		if !order.IsGuest() {
			if err := s.cartService.ClearInTx(tx, *order.UserID); err != nil {
				return err
			}
		}

		confirmed = order
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			logger.Error("Failed to confirm order", err, map[string]interface{}{
				"order_id": orderID,
			})
		}
		return nil, err
	}

	logger.Info("Order confirmed", map[string]interface{}{
		"order_id":           confirmed.ID,
		"gateway_payment_id": gatewayPaymentID,
	})

	if s.notifications != nil {
		s.notifications.SendOrderConfirmation(ctx, confirmed)
	}
	s.publish(confirmed)
	return confirmed, nil
}

// Fail marks the order PAYMENT_FAILED from any state.
func (s *orderService) Fail(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := s.setStatus(ctx, orderID, model.OrderStatusPaymentFailed)
	if err != nil {
		return nil, err
	}

	logger.Warn("Order payment failed", map[string]interface{}{
		"order_id": orderID,
	})
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*model.Order, error) {
	parsed, err := model.ParseOrderStatus(status)
	if err != nil {
		logger.Warn("Rejected unknown order status", map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.setStatus(ctx, orderID, parsed)
	if err != nil {
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   parsed,
	})
	return order, nil
}

func (s *orderService) setStatus(ctx context.Context, orderID uint, status model.OrderStatus) (*model.Order, error) {
	orders := s.orderRepo.WithTx(s.db.WithContext(ctx))

	if err := orders.UpdateStatus(orderID, status); err != nil {
		err = notFoundAs(err, ErrOrderNotFound)
		if !isDomainError(err) {
			logger.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": orderID,
				"status":   status,
			})
		}
		return nil, err
	}

	order, err := orders.FindByID(orderID)
	if err != nil {
		return nil, notFoundAs(err, ErrOrderNotFound)
	}
	s.publish(order)
	return order, nil
}

func (s *orderService) publish(order *model.Order) {
	if s.events == nil || order.IsGuest() {
		return
	}
	s.events.PublishToUser(*order.UserID, OrderEvent{
		Type:       OrderEventStatusChanged,
		OrderID:    order.ID,
		Status:     order.Status,
		OccurredAt: s.now(),
	})
}

func (s *orderService) Get(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.WithTx(s.db.WithContext(ctx)).FindByID(orderID)
	if err != nil {
		return nil, notFoundAs(err, ErrOrderNotFound)
	}
	return order, nil
}

func (s *orderService) ListAll(ctx context.Context, r DateRange) ([]model.Order, error) {
	from, to := r.bounds()

	orders, err := s.orderRepo.WithTx(s.db.WithContext(ctx)).FindByDateRange(from, to)
	if err != nil {
		logger.Error("Failed to list orders", err)
		return nil, err
	}

	logger.Info("Orders listed", map[string]interface{}{
		"count":    len(orders),
		"filtered": from != nil,
	})
	return orders, nil
}

// bounds expands the range to whole days in the location of each bound.
func (r DateRange) bounds() (*time.Time, *time.Time) {
	if r.Start == nil || r.End == nil {
		return nil, nil
	}
	from := StartOfDay(*r.Start)
	to := EndOfDay(*r.End)
	return &from, &to
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func (s *orderService) ListForUser(ctx context.Context, userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.WithTx(s.db.WithContext(ctx)).FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to list user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) ExportExcel(ctx context.Context, r DateRange) ([]byte, error) {
	orders, err := s.ListAll(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNothingToExport
	}

	data, err := s.exporter.Export(orders)
	if err != nil {
		logger.Error("Failed to export orders", err, map[string]interface{}{
			"count": len(orders),
		})
		return nil, err
	}
	return data, nil
}

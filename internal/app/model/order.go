package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string // order lifecycle state, stored by name

const (
	OrderStatusPaymentPending    OrderStatus = "PAYMENT_PENDING"    // created, waiting for payment proof
	OrderStatusPaymentFailed     OrderStatus = "PAYMENT_FAILED"     // verification rejected
	OrderStatusOrderPlaced       OrderStatus = "ORDER_PLACED"       // payment verified
	OrderStatusOrderConfirmed    OrderStatus = "ORDER_CONFIRMED"    // admin
	OrderStatusPreparingShipment OrderStatus = "PREPARING_SHIPMENT" // admin
	OrderStatusShipped           OrderStatus = "SHIPPED"            // admin
	OrderStatusOutForDelivery    OrderStatus = "OUT_FOR_DELIVERY"   // admin
	OrderStatusDelivered         OrderStatus = "DELIVERED"          // admin
	OrderStatusCancelled         OrderStatus = "CANCELLED"          // admin
)

var orderStatuses = []OrderStatus{
	OrderStatusPaymentPending,
	OrderStatusPaymentFailed,
	OrderStatusOrderPlaced,
	OrderStatusOrderConfirmed,
	OrderStatusPreparingShipment,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// OrderStatuses returns every status name in lifecycle order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(orderStatuses))
	copy(out, orderStatuses)
	return out
}

// ParseOrderStatus accepts a status name in any case.
func ParseOrderStatus(s string) (OrderStatus, error) {
	candidate := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, status := range orderStatuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

type Order struct {
	ID                  uint            `gorm:"primarykey" json:"id"`
	UserID              *uint           `gorm:"index" json:"user_id,omitempty"` // nil for guest checkout
	CustomerName        string          `gorm:"size:100;not null" json:"customer_name"`
	CustomerPhone       string          `gorm:"size:20;not null" json:"customer_phone"`
	CustomerEmail       string          `gorm:"size:255" json:"customer_email"`
	ProductsOrdered     string          `gorm:"type:text" json:"products_ordered"`
	DeliveryAddress     string          `gorm:"type:text;not null" json:"delivery_address"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions"`
	PaymentMethod       string          `gorm:"size:50" json:"payment_method"`
	Amount              decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status              OrderStatus     `gorm:"type:varchar(30);not null;index" json:"status"`
	GatewayOrderID      string          `gorm:"size:64;index" json:"gateway_order_id,omitempty"`
	GatewayPaymentID    string          `gorm:"size:64" json:"gateway_payment_id,omitempty"`
	OrderDate           time.Time       `gorm:"not null;index" json:"order_date"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) IsGuest() bool {
	return o.UserID == nil
}

// CustomerLabel is the owning username, or "Guest".
func (o *Order) CustomerLabel() string {
	if o.User != nil && o.User.Username != "" {
		return o.User.Username
	}
	return "Guest"
}

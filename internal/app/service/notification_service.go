package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/ikkim/teashop-backend/pkg/logger"
)

// Mailer delivers a plain-text message.
type Mailer interface {
	Send(to, subject, body string) error
}

// ContactMessage is a storefront contact-form submission.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type NotificationService interface {
	// SendOrderConfirmation never fails the caller; delivery errors are logged.
	SendOrderConfirmation(ctx context.Context, order *model.Order)
	SendContactMessage(ctx context.Context, msg ContactMessage) error
}

type notificationService struct {
	mailer        Mailer
	shopInbox     string
	shopName      string
	supportFooter string
}

func NewNotificationService(mailer Mailer, shopInbox string) NotificationService {
	return &notificationService{
		mailer:        mailer,
		shopInbox:     shopInbox,
		shopName:      "Tea Shop",
		supportFooter: "For any queries, reply to this email.",
	}
}

func (s *notificationService) SendOrderConfirmation(ctx context.Context, order *model.Order) {
	if order == nil {
		return
	}
	if strings.TrimSpace(order.CustomerEmail) == "" {
		logger.Info("No customer email on order, skipping confirmation", map[string]interface{}{
			"order_id": order.ID,
		})
		return
	}

	subject := fmt.Sprintf("%s: Your Order Confirmation #%d", s.shopName, order.ID)
	body := s.confirmationBody(order)

	if err := s.mailer.Send(order.CustomerEmail, subject, body); err != nil {
		logger.Error("Failed to send order confirmation email", err, map[string]interface{}{
			"order_id": order.ID,
			"to":       order.CustomerEmail,
		})
		return
	}

	logger.Info("Order confirmation email sent", map[string]interface{}{
		"order_id": order.ID,
		"to":       order.CustomerEmail,
	})
}

func (s *notificationService) confirmationBody(order *model.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", order.CustomerName)
	fmt.Fprintf(&b, "Thank you for your order with %s!\n\n", s.shopName)
	fmt.Fprintf(&b, "Your Order ID: %d\n", order.ID)
	fmt.Fprintf(&b, "Total Amount: ₹%s\n", order.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Products Ordered: %s\n", order.ProductsOrdered)
	fmt.Fprintf(&b, "Delivery Address: %s\n", order.DeliveryAddress)
	fmt.Fprintf(&b, "Payment Method: %s\n", order.PaymentMethod)
	fmt.Fprintf(&b, "Current Status: %s\n\n", order.Status)
	b.WriteString("We are processing your order and will notify you once it's shipped.\n\n")
	b.WriteString(s.supportFooter + "\n\n")
	fmt.Fprintf(&b, "Best Regards,\nThe %s Team\n", s.shopName)
	return b.String()
}

func (s *notificationService) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	if strings.TrimSpace(msg.Message) == "" {
		return invalidArgument("message is required")
	}

	subject := "Contact Form: " + msg.Subject
	body := fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", msg.Name, msg.Email, msg.Message)

	if err := s.mailer.Send(s.shopInbox, subject, body); err != nil {
		logger.Error("Failed to send contact message", err, map[string]interface{}{
			"from": msg.Email,
		})
		return fmt.Errorf("send contact message: %w", err)
	}

	logger.Info("Contact message forwarded", map[string]interface{}{
		"from":    msg.Email,
		"subject": msg.Subject,
	})
	return nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placedOrder() *model.Order {
	return &model.Order{
		ID:              7,
		CustomerName:    "Asha Rao",
		CustomerEmail:   "asha@example.com",
		DeliveryAddress: "12 Tea Garden Road",
		PaymentMethod:   "RAZORPAY",
		Amount:          decimal.RequireFromString("540"),
		ProductsOrdered: "Darjeeling x2",
		Status:          model.OrderStatusOrderPlaced,
	}
}

func TestNotificationService_OrderConfirmation(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, "shop@example.com")

	svc.SendOrderConfirmation(context.Background(), placedOrder())

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "asha@example.com", sent[0].To)
	assert.Equal(t, "Tea Shop: Your Order Confirmation #7", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Dear Asha Rao")
	assert.Contains(t, sent[0].Body, "₹540.00")
	assert.Contains(t, sent[0].Body, "Current Status: ORDER_PLACED")
}

func TestNotificationService_OrderConfirmationSkipsAndSwallows(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, "shop@example.com")

	noEmail := placedOrder()
	noEmail.CustomerEmail = " "
	svc.SendOrderConfirmation(context.Background(), noEmail)
	svc.SendOrderConfirmation(context.Background(), nil)
	assert.Empty(t, mailer.Sent())

	mailer.err = errors.New("smtp down")
	assert.NotPanics(t, func() {
		svc.SendOrderConfirmation(context.Background(), placedOrder())
	})
}

func TestNotificationService_ContactMessage(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewNotificationService(mailer, "shop@example.com")
	ctx := context.Background()

	err := svc.SendContactMessage(ctx, ContactMessage{
		Name:    "Ravi",
		Email:   "ravi@example.com",
		Subject: "Wholesale",
		Message: "Do you ship 10kg bags?",
	})
	require.NoError(t, err)

	sent := mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "shop@example.com", sent[0].To)
	assert.Equal(t, "Contact Form: Wholesale", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "ravi@example.com")

	err = svc.SendContactMessage(ctx, ContactMessage{Name: "Ravi"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	mailer.err = errors.New("smtp down")
	err = svc.SendContactMessage(ctx, ContactMessage{Message: "hi"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidArgument)
}

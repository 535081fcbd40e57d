// Package payment wraps the hosted checkout provider behind a small interface.
package payment

import (
	"context"
	"errors"
)

const (
	LifetimePlan       = "lifetime"
	productName        = "Carousel Generator - Lifetime Access"
	productDescription = "Unlimited carousel generation and exports"
)

var ErrInvalidSignature = errors.New("payment: webhook signature verification failed")

type CheckoutRequest struct {
	UserID      string
	AmountCents int64
	Origin      string // browser origin the checkout redirects back to
}

type Checkout struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// Completion is a verified, paid checkout.
type Completion struct {
	UserID           string
	SubscriptionType string
	AmountPaid       int64
	CustomerID       string
	PaymentIntentID  string
}

type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	// ParseWebhook verifies the payload. It returns nil, nil for events that
	// do not complete a payment.
	ParseWebhook(payload []byte, signature string) (*Completion, error)
}

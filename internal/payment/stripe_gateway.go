package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

var ErrMissingWebhookSecret = errors.New("payment: stripe webhook secret is not configured")

// NewStripeGateway refuses an empty webhook secret, since Stripe's verifier
// would accept payloads signed with the empty key.
func NewStripeGateway(secretKey, webhookSecret string) (*StripeGateway, error) {
	if webhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}
	return &StripeGateway{api: client.New(secretKey, nil), webhookSecret: webhookSecret}, nil
}

func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("checkout requires a user id")
	}
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("checkout amount must be positive, got %d", req.AmountCents)
	}
	origin := strings.TrimRight(req.Origin, "/")

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(string(stripe.CurrencyUSD)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(productName),
					Description: stripe.String(productDescription),
				},
				UnitAmount: stripe.Int64(req.AmountCents),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:        stripe.String(origin + "/preview/{CHECKOUT_SESSION_ID}?success=true"),
		CancelURL:         stripe.String(origin + "/preview/{CHECKOUT_SESSION_ID}?canceled=true"),
		ClientReferenceID: stripe.String(req.UserID),
	}
	params.Context = ctx
	params.AddMetadata("user_id", req.UserID)
	params.AddMetadata("subscription_type", LifetimePlan)

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session creation failed: %w", err)
	}
	return &Checkout{SessionID: sess.ID, URL: sess.URL}, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Completion, error) {
	return parseWebhook(payload, signature, g.webhookSecret)
}

func parseWebhook(payload []byte, signature, secret string) (*Completion, error) {
	if secret == "" {
		log.Printf("Stripe webhook rejected: %v", ErrMissingWebhookSecret)
		return nil, ErrInvalidSignature
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Printf("Stripe webhook rejected: %v", err)
		return nil, ErrInvalidSignature
	}

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}

	c := &Completion{
		UserID:           sess.Metadata["user_id"],
		SubscriptionType: sess.Metadata["subscription_type"],
		AmountPaid:       sess.AmountTotal,
	}
	if c.UserID == "" {
		c.UserID = sess.ClientReferenceID
	}
	if c.SubscriptionType == "" {
		c.SubscriptionType = LifetimePlan
	}
	if sess.Customer != nil {
		c.CustomerID = sess.Customer.ID
	}
	if sess.PaymentIntent != nil {
		c.PaymentIntentID = sess.PaymentIntent.ID
	}
	if c.UserID == "" {
		return nil, fmt.Errorf("checkout session %s carries no user id", sess.ID)
	}
	return c, nil
}

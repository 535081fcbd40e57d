package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"carouselcraft.io/carousel-studio/internal/payment"
	"carouselcraft.io/carousel-studio/internal/store"
	"github.com/patrickmn/go-cache"
)

const lifetimePriceKey = "subscription:lifetime_price"

var ErrPaymentsDisabled = errors.New("payments are not configured")

type SubscriptionService struct {
	dbStore   *store.SQLiteStore
	gateway   payment.Gateway
	origin    string
	seedPrice int64
	cache     *cache.Cache
}

// NewSubscriptionService uses seedPrice when no price has been stored yet.
// A nil gateway disables checkout and webhooks.
func NewSubscriptionService(db *store.SQLiteStore, gateway payment.Gateway, origin string, seedPrice int64) *SubscriptionService {
	return &SubscriptionService{
		dbStore:   db,
		gateway:   gateway,
		origin:    origin,
		seedPrice: seedPrice,
		cache:     cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Status returns the user's subscription, if any, and whether it is active.
func (s *SubscriptionService) Status(userID int64) (*store.Subscription, bool, error) {
	sub, err := s.dbStore.GetSubscriptionByUserID(userID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load subscription for user %d: %w", userID, err)
	}
	return sub, sub != nil && sub.Status == store.SubscriptionActive, nil
}

func (s *SubscriptionService) IsActive(userID int64) (bool, error) {
	_, active, err := s.Status(userID)
	return active, err
}

// LifetimePrice reads the configured price in cents, storing the seed price
// the first time it is asked for.
func (s *SubscriptionService) LifetimePrice() (int64, error) {
	if cached, ok := s.cache.Get(lifetimePriceKey); ok {
		return cached.(int64), nil
	}
	cfg, err := s.dbStore.GetSubscriptionConfig()
	if err != nil {
		return 0, err
	}
	price := s.seedPrice
	if cfg != nil {
		price = cfg.LifetimePrice
	} else if err := s.dbStore.SetLifetimePrice(price); err != nil {
		return 0, err
	}
	s.cache.SetDefault(lifetimePriceKey, price)
	return price, nil
}

func (s *SubscriptionService) SetLifetimePrice(cents int64) error {
	if cents <= 0 {
		return invalid("lifetime_price", "must be positive")
	}
	if err := s.dbStore.SetLifetimePrice(cents); err != nil {
		return err
	}
	s.cache.Delete(lifetimePriceKey)
	return nil
}

// Checkout opens a hosted checkout session for the lifetime plan. origin, when
// empty, defaults to the configured application origin.
func (s *SubscriptionService) Checkout(ctx context.Context, userID int64, origin string) (*payment.Checkout, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	price, err := s.LifetimePrice()
	if err != nil {
		return nil, fmt.Errorf("failed to read lifetime price: %w", err)
	}
	if origin == "" {
		origin = s.origin
	}
	return s.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		UserID:      strconv.FormatInt(userID, 10),
		AmountCents: price,
		Origin:      origin,
	})
}

// HandleWebhook activates the subscription described by a verified
// completion event. Other events are acknowledged and ignored.
func (s *SubscriptionService) HandleWebhook(payload []byte, signature string) error {
	if s.gateway == nil {
		return ErrPaymentsDisabled
	}
	completion, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if completion == nil {
		return nil
	}

	userID, err := strconv.ParseInt(completion.UserID, 10, 64)
	if err != nil {
		return invalid("user_id", "webhook carries an unusable user id %q", completion.UserID)
	}
	plan := completion.SubscriptionType
	if plan == "" {
		plan = payment.LifetimePlan
	}
	sub := &store.Subscription{
		UserID:                userID,
		Status:                store.SubscriptionActive,
		SubscriptionType:      plan,
		AmountPaid:            completion.AmountPaid,
		StripeCustomerID:      completion.CustomerID,
		StripePaymentIntentID: completion.PaymentIntentID,
	}
	if err := s.dbStore.UpsertSubscription(sub); err != nil {
		return fmt.Errorf("failed to activate subscription for user %d: %w", userID, err)
	}
	log.Printf("Subscription %s activated for user %d", plan, userID)
	return nil
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

func (s *SQLiteStore) GetSubscriptionByUserID(userID int64) (*Subscription, error) {
	var sub Subscription
	err := s.db.QueryRow(`
        SELECT id, user_id, status, subscription_type, amount_paid, stripe_customer_id, stripe_payment_intent_id, created_at, updated_at
        FROM subscriptions WHERE user_id = ?`, userID).Scan(
		&sub.ID, &sub.UserID, &sub.Status, &sub.SubscriptionType, &sub.AmountPaid,
		&sub.StripeCustomerID, &sub.StripePaymentIntentID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

// UpsertSubscription keys on user_id: a repeated webhook delivery updates the
// existing row instead of adding another.
func (s *SQLiteStore) UpsertSubscription(sub *Subscription) error {
	now := time.Now()
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	_, err := s.db.Exec(`
        INSERT INTO subscriptions (id, user_id, status, subscription_type, amount_paid, stripe_customer_id, stripe_payment_intent_id, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (user_id) DO UPDATE SET
            status = excluded.status,
            subscription_type = excluded.subscription_type,
            amount_paid = excluded.amount_paid,
            stripe_customer_id = excluded.stripe_customer_id,
            stripe_payment_intent_id = excluded.stripe_payment_intent_id,
            updated_at = excluded.updated_at`,
		sub.ID, sub.UserID, sub.Status, sub.SubscriptionType, sub.AmountPaid,
		sub.StripeCustomerID, sub.StripePaymentIntentID, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSubscriptionConfig() (*SubscriptionConfig, error) {
	var cfg SubscriptionConfig
	err := s.db.QueryRow("SELECT lifetime_price, updated_at FROM subscription_config WHERE id = 1").Scan(&cfg.LifetimePrice, &cfg.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription config: %w", err)
	}
	return &cfg, nil
}

func (s *SQLiteStore) SetLifetimePrice(cents int64) error {
	if cents <= 0 {
		return fmt.Errorf("lifetime price must be positive, got %d", cents)
	}
	_, err := s.db.Exec(`
        INSERT INTO subscription_config (id, lifetime_price, updated_at) VALUES (1, ?, ?)
        ON CONFLICT (id) DO UPDATE SET lifetime_price = excluded.lifetime_price, updated_at = excluded.updated_at`,
		cents, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set lifetime price: %w", err)
	}
	return nil
}

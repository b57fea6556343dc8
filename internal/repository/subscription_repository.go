package repository

import (
	"context"
	"database/sql"

	"github.com/movieexplorer/movie-explorer-api/internal/model"
)

// SubscriptionRepo persists the 1:1 billing state of each user.
type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// CreateDefault provisions the basic/active subscription every new
// account starts with. stripeCustomerID may be nil when the billing
// provider was unreachable; the row is created regardless so account
// creation never depends on billing availability.
func (r *SubscriptionRepo) CreateDefault(ctx context.Context, userID uint64, stripeCustomerID *string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO subscriptions (user_id, plan_type, status, stripe_customer_id) VALUES (?,?,?,?)",
		userID, model.PlanBasic, model.SubscriptionActive, stripeCustomerID)
	return err
}

// GetByUserID fetches the user's subscription.
func (r *SubscriptionRepo) GetByUserID(ctx context.Context, userID uint64) (model.Subscription, error) {
	var s model.Subscription
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,user_id,plan_type,status,stripe_customer_id,stripe_subscription_id,expires_at,created_at,updated_at FROM subscriptions WHERE user_id=? LIMIT 1",
		userID).Scan(&s.ID, &s.UserID, &s.PlanType, &s.Status,
		&s.StripeCustomerID, &s.StripeSubscriptionID, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Subscription{}, ErrSubscriptionNotFound
	}
	return s, err
}

// HasPremium reports whether the user's subscription is on the premium
// plan. A missing subscription counts as not premium rather than an
// error; callers treat the states identically.
func (r *SubscriptionRepo) HasPremium(ctx context.Context, userID uint64) (bool, error) {
	var plan string
	err := r.DB.QueryRowContext(ctx,
		"SELECT plan_type FROM subscriptions WHERE user_id=? LIMIT 1", userID).Scan(&plan)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return plan == model.PlanPremium, nil
}

// SetPlan switches the plan type, used when a payment succeeds or a
// premium period lapses.
func (r *SubscriptionRepo) SetPlan(ctx context.Context, userID uint64, plan, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE subscriptions SET plan_type=?, status=? WHERE user_id=?", plan, status, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

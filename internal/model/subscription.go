package model

import "time"

// Subscription plan types stored in subscriptions.plan_type.
const (
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

// Subscription statuses stored in subscriptions.status.
const (
	SubscriptionActive    = "active"
	SubscriptionInactive  = "inactive"
	SubscriptionCancelled = "cancelled"
)

// Subscription models an entry in the `subscriptions` table. Every user
// owns exactly one subscription; a basic/active one is provisioned
// synchronously at registration. The Stripe identifiers stay null when
// the billing provider was unreachable during provisioning.
//
// Fields:
//  ID                   – primary key identifier.
//  UserID               – owner of the subscription (unique).
//  PlanType             – "basic" or "premium".
//  Status               – "active", "inactive" or "cancelled".
//  StripeCustomerID     – external billing customer reference (nullable).
//  StripeSubscriptionID – external billing subscription reference (nullable).
//  ExpiresAt            – when the paid period ends (nullable).
type Subscription struct {
	ID                   uint64
	UserID               uint64
	PlanType             string
	Status               string
	StripeCustomerID     *string
	StripeSubscriptionID *string
	ExpiresAt            *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsPremium reports whether the subscription unlocks premium content.
func (s Subscription) IsPremium() bool { return s.PlanType == PlanPremium }

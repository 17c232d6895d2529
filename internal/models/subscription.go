package models

import "time"

const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"
	SubscriptionCanceled = "canceled"
)

// ArtistSubscription is stored inline on the user row.
type ArtistSubscription struct {
	Plan             string     `gorm:"size:50" json:"plan"`
	Status           string     `gorm:"size:20;default:'inactive';index" json:"status"`
	CurrentPeriodEnd *time.Time `json:"currentPeriodEnd"`
	LastPaymentAt    *time.Time `json:"lastPaymentAt"`
}

// ActiveAt reports whether the subscription grants artist access at t.
func (s ArtistSubscription) ActiveAt(t time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	return s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.After(t)
}

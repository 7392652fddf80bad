package types

import "time"

// User is a back-office view of an application account.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email" validate:"required,email"`
	Name      string    `json:"name" validate:"required,max=120"`
	Role      Role      `json:"role" validate:"required,oneof=admin manager editor viewer"`
	Locale    string    `json:"locale" validate:"required,bcp47_language_tag"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscriber is a newsletter recipient targeted by the bulk-email composer.
type Subscriber struct {
	ID         string    `json:"id"`
	Email      string    `json:"email" validate:"required,email"`
	Locale     string    `json:"locale" validate:"required,bcp47_language_tag"`
	Subscribed bool      `json:"subscribed"`
	Source     string    `json:"source" validate:"max=64"`
	CreatedAt  time.Time `json:"created_at"`
}

// PriceExperiment tracks one variant of a price A/B test.
type PriceExperiment struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=120"`
	Variant     string    `json:"variant" validate:"required,max=32"`
	PriceCents  int       `json:"price_cents" validate:"gte=0"`
	Locale      string    `json:"locale" validate:"required,bcp47_language_tag"`
	Views       int       `json:"views" validate:"gte=0"`
	Conversions int       `json:"conversions" validate:"gte=0,ltefield=Views"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConversionRate returns conversions per view, or 0 without views.
func (e PriceExperiment) ConversionRate() float64 {
	if e.Views == 0 {
		return 0
	}
	return float64(e.Conversions) / float64(e.Views)
}

// LocaleStat aggregates accounts and newsletter subscribers per locale.
type LocaleStat struct {
	Locale      string `json:"locale"`
	Users       int    `json:"users"`
	Subscribers int    `json:"subscribers"`
}

// Stats is the headline dashboard summary.
type Stats struct {
	Users             int `json:"users"`
	ActiveUsers       int `json:"active_users"`
	Subscribers       int `json:"subscribers"`
	ActiveSubscribers int `json:"active_subscribers"`
	Experiments       int `json:"experiments"`
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentCanceled = "canceled"
)

const (
	PlanArtist1M = "artist_1m"
	PlanArtist3M = "artist_3m"
	PlanArtist6M = "artist_6m"
)

// PaymentRaw keeps provider payloads per stage for diagnostics.
type PaymentRaw struct {
	CreatePayment json.RawMessage `json:"createPaymentRes,omitempty"`
	LastStatus    json.RawMessage `json:"lastStatusRes,omitempty"`
	Webhook       json.RawMessage `json:"webhook,omitempty"`
}

type Payment struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderCode    string     `gorm:"size:64;not null;uniqueIndex" json:"orderCode"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	Amount       int64      `gorm:"not null" json:"amount"`
	Currency     string     `gorm:"size:8;default:'VND'" json:"currency"`
	Provider     string     `gorm:"size:32;default:'PayOS'" json:"provider"`
	Status       string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Plan         string     `gorm:"size:20;not null;default:'artist_1m'" json:"plan"`
	PeriodMonths int        `gorm:"not null;default:1" json:"periodMonths"`
	Description  string     `gorm:"size:255" json:"description"`
	Raw          PaymentRaw `gorm:"type:jsonb;serializer:json" json:"raw"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

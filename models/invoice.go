package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice freezes the billing totals of a session. The unique index on
// SessionID is what ultimately guarantees one invoice per session, even
// under concurrent create calls. Immutable except for the one-way paid
// transition.
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Number        string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"number"`
	SessionID     uint            `gorm:"not null;uniqueIndex" json:"session_id"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"discount"`
	ServiceCharge decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"service_charge"`
	Tax           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Paid          bool            `gorm:"not null;default:false" json:"paid"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
}

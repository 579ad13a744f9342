package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Setting is the singleton rates record. Rates are percentages, e.g.
// 10.00 means 10%. Auto-created with zero rates on first access.
type Setting struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	TaxRate           decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	ServiceChargeRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"service_charge_rate"`
	DiscountRate      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_rate"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ItemStatusWaiting    = "waiting"
	ItemStatusInProgress = "in_progress"
	ItemStatusReady      = "ready"
	ItemStatusServed     = "served"
)

// ValidItemStatus reports whether s is one of the four legal order-item
// statuses. No ordering between statuses is enforced beyond this.
func ValidItemStatus(s string) bool {
	switch s {
	case ItemStatusWaiting, ItemStatusInProgress, ItemStatusReady, ItemStatusServed:
		return true
	}
	return false
}

type OrderItem struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	OrderID    uint     `gorm:"not null;index" json:"order_id"`
	Order      Order    `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	MenuItemID uint     `gorm:"not null" json:"menu_item_id"`
	MenuItem   MenuItem `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"menu_item"`
	Quantity   int      `gorm:"not null;default:1" json:"quantity"`
	NoteToChef string   `gorm:"type:text" json:"note_to_chef"`
	// PriceSnapshot is copied from the menu item when the line is created
	// and never re-read from the catalog afterwards.
	PriceSnapshot decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price_snapshot"`
	Status        string          `gorm:"type:varchar(20);not null;default:'waiting'" json:"status"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

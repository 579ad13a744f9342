package models

import "time"

const (
	SessionActive = "active"
	SessionClosed = "closed"
)

// TableSession is a single dine-in occupancy of a table, from seating to
// settlement. At most one active session may exist per table; the open
// and close transitions re-check this inside their transactions.
type TableSession struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	TableID         uint       `gorm:"not null;index" json:"table_id"`
	Table           Table      `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"table"`
	Status          string     `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	StartedAt       time.Time  `gorm:"not null" json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	BillRequested   bool       `gorm:"not null;default:false" json:"bill_requested"`
	BillRequestedAt *time.Time `json:"bill_requested_at,omitempty"`
	Orders          []Order    `gorm:"foreignKey:SessionID" json:"orders,omitempty"`
	Invoice         *Invoice   `gorm:"foreignKey:SessionID" json:"invoice,omitempty"`
}

package models

import "time"

type Order struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	SessionID   uint         `gorm:"not null;index" json:"session_id"`
	Session     TableSession `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedByID uint         `gorm:"not null" json:"created_by_id"`
	CreatedBy   User         `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"created_by"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	Items       []OrderItem  `gorm:"foreignKey:OrderID" json:"items"`
}

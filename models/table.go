package models

import "time"

const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
)

type Table struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Number    uint      `gorm:"uniqueIndex;not null" json:"number"`
	Status    string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

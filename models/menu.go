package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ItemTypeFood  = "food"
	ItemTypeDrink = "drink"
)

type MenuCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(200);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

type MenuItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CategoryID  uint            `gorm:"not null;uniqueIndex:idx_category_name" json:"category_id"`
	Category    MenuCategory    `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"category"`
	Name        string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_category_name" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price"`
	Available   bool            `gorm:"not null;default:true" json:"available"`
	Type        string          `gorm:"type:varchar(10);not null;default:'food'" json:"type"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Safe: nakit kasa.
type Safe struct {
	ID        uint   `gorm:"primaryKey"`
	TenantID  string `gorm:"type:uuid;index;not null"`
	Name      string `gorm:"size:100;not null"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,2);default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

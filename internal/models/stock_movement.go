package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementTypeIn  MovementType = "IN"  // giriş
	MovementTypeOut MovementType = "OUT" // çıkış
)

// StockMovement: stok hareketi defteri. Kayıtlar büyük oranda
// append-only'dir; herhangi bir mutasyon ürünün stok miktarının
// tüm hareket setinden yeniden hesaplanmasını tetikler.
type StockMovement struct {
	ID           uint   `gorm:"primaryKey"`
	TenantID     string `gorm:"type:uuid;index;not null"`
	ProductID    uint   `gorm:"index;not null"`
	Product      Product
	MovementType MovementType    `gorm:"size:10;not null"` // IN / OUT
	Quantity     float64         `gorm:"not null"`
	Price        decimal.Decimal `gorm:"type:decimal(18,2);default:0"`
	Description  string          `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

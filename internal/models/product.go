package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product: stok kartı. StockQuantity, ürünün tüm stok hareketlerinin
// (IN toplamı - OUT toplamı) değerine eşit tutulur; her hareket
// mutasyonunda ledger üzerinden baştan hesaplanır.
type Product struct {
	ID            uint   `gorm:"primaryKey"`
	TenantID      string `gorm:"type:uuid;index;not null"`
	Name          string `gorm:"size:150;not null"`
	SKU           string `gorm:"size:50;index"`
	Barcode       string `gorm:"size:50;index"`
	BuyPrice      decimal.Decimal `gorm:"type:decimal(18,2);default:0"`
	SellPrice     decimal.Decimal `gorm:"type:decimal(18,2);default:0"`
	VatRate       float64 `gorm:"default:0"`
	StockQuantity float64 `gorm:"default:0"`
	CriticalLevel float64 `gorm:"default:0"` // stok <= kritik seviye => düşük stok
	CategoryID    *uint   `gorm:"index"`
	Category      *Category
	WarehouseID   *uint `gorm:"index"`
	Warehouse     *Warehouse
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LowStock: kritik seviye dahil (<=).
func (p *Product) LowStock() bool {
	return p.StockQuantity <= p.CriticalLevel
}

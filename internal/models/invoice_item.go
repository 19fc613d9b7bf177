package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItem: fatura kalemi. Total = Quantity * UnitPrice + KDV payı.
type InvoiceItem struct {
	ID        uint   `gorm:"primaryKey"`
	TenantID  string `gorm:"type:uuid;index;not null"`
	InvoiceID uint   `gorm:"index;not null"`
	Invoice   Invoice
	ProductID uint `gorm:"index;not null"`
	Product   Product
	Quantity  float64         `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	VatRate   float64         `gorm:"default:0"` // yüzde (örn: 20)
	Total     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency  Currency        `gorm:"size:10;not null;default:TRY"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

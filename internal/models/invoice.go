package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceType string

const (
	InvoiceTypeSales    InvoiceType = "SALES"    // satış faturası
	InvoiceTypePurchase InvoiceType = "PURCHASE" // alış faturası
)

type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
)

// Invoice: fatura. TotalAmount = Subtotal - Discount + VatAmount.
// Taslak (IsDraft) faturalar bakiye ve stok etkisi yaratmaz.
type Invoice struct {
	ID            uint   `gorm:"primaryKey"`
	TenantID      string `gorm:"type:uuid;index;not null;uniqueIndex:idx_invoices_tenant_number"`
	InvoiceNumber string `gorm:"size:50;not null;uniqueIndex:idx_invoices_tenant_number"`
	InvoiceType   InvoiceType `gorm:"size:20;not null"` // SALES / PURCHASE
	Date          time.Time   `gorm:"index;not null"`
	AccountID     uint `gorm:"index;not null"`
	Account       CurrentAccount
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,2);default:0"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,2);default:0"`
	VatAmount     decimal.Decimal `gorm:"type:decimal(18,2);default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);default:0"`
	Currency      Currency `gorm:"size:10;not null;default:TRY"`
	IsDraft       bool     `gorm:"default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeCustomer AccountType = "CUSTOMER" // müşteri
	AccountTypeSupplier AccountType = "SUPPLIER" // tedarikçi
)

// CurrentAccount: cari hesap. Balance, fatura ve işlem kayıtlarının
// net etkisini tutan türetilmiş bir alandır; okuma sırasında yeniden
// hesaplanmaz, yazma sırasında mutasyonla güncellenir.
type CurrentAccount struct {
	ID          uint   `gorm:"primaryKey"`
	TenantID    string `gorm:"type:uuid;index;not null"`
	Name        string `gorm:"size:150;not null"`
	AccountType AccountType `gorm:"size:20;not null"` // CUSTOMER / SUPPLIER
	Phone       string `gorm:"size:50"`
	Email       string `gorm:"size:100"`
	Address     string `gorm:"size:255"`
	TaxNumber   string `gorm:"size:50"` // vergi no (opsiyonel)
	Balance     decimal.Decimal `gorm:"type:decimal(18,2);default:0"`
	IsActive    bool   `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

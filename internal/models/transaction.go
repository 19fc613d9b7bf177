package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeCollection TransactionType = "COLLECTION" // tahsilat
	TransactionTypePayment    TransactionType = "PAYMENT"    // ödeme
)

// Transaction: kasa defteri kaydı. Referans verdiği kasa/banka/cari
// hesabın bakiyesini etkiler. Fatura kayıtlarının aksine silinince
// etkisi geri alınır (canlı düzeltme kaydıdır, tarihçe değil).
type Transaction struct {
	ID              uint   `gorm:"primaryKey"`
	TenantID        string `gorm:"type:uuid;index;not null"`
	TransactionType TransactionType `gorm:"size:20;not null"` // COLLECTION / PAYMENT
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AccountID       *uint `gorm:"index"`
	Account         *CurrentAccount
	SafeID          *uint `gorm:"index"`
	Safe            *Safe
	BankID          *uint `gorm:"index"`
	Bank            *Bank
	Date            time.Time `gorm:"index;not null"`
	Description     string    `gorm:"size:255"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

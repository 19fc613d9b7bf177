package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChequeType string

const (
	ChequeTypeCheque         ChequeType = "CHEQUE"          // çek
	ChequeTypePromissoryNote ChequeType = "PROMISSORY_NOTE" // senet
)

type ChequeStatus string

const (
	ChequeStatusPending   ChequeStatus = "PENDING"   // beklemede
	ChequeStatusCollected ChequeStatus = "COLLECTED" // tahsil edildi
	ChequeStatusBounced   ChequeStatus = "BOUNCED"   // karşılıksız
)

type Cheque struct {
	ID           uint   `gorm:"primaryKey"`
	TenantID     string `gorm:"type:uuid;index;not null"`
	ChequeType   ChequeType      `gorm:"size:20;not null"` // CHEQUE / PROMISSORY_NOTE
	Amount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IssueDate    time.Time       `gorm:"not null"`
	MaturityDate time.Time       `gorm:"index;not null"` // vade
	IssuerName   string          `gorm:"size:150;not null"`
	AccountID    *uint `gorm:"index"`
	Account      *CurrentAccount
	Status       ChequeStatus `gorm:"size:20;not null;default:PENDING"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

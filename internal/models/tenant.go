package models

import "time"

// Tenant: her işletme için izolasyon birimi. Diğer tüm kayıtlar
// tenant_id üzerinden bu tabloya bağlıdır.
type Tenant struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"size:100;not null"`
	CompanyName string `gorm:"size:150"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Users []User `gorm:"foreignKey:TenantID"`
}

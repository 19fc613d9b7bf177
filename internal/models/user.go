package models

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	TenantID     string `gorm:"type:uuid;index;not null"`
	Tenant       Tenant
	Name         string `gorm:"size:100;not null"`
	Email        string `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

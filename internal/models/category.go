package models

import "time"

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	TenantID    string `gorm:"type:uuid;index;not null"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

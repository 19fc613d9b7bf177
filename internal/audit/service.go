package audit

import (
	"encoding/json"
	"fmt"

	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LogOptions struct {
	TenantID    string
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

func WriteLog(opts LogOptions) error {
	// PostgreSQL jsonb için boş string yerine "null" JSON string'i kullanmalıyız
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	log := models.AuditLog{
		TenantID:    opts.TenantID,
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := database.DB.Create(&log).Error; err != nil {
		return fmt.Errorf("audit log kaydedilemedi: %w", err)
	}

	return nil
}

// Actor: audit kaydı için istekteki kullanıcıyı döndürür. Oturumsuz
// (header ile çözülen) isteklerde 0/"" döner; log yine yazılır.
func Actor(c *fiber.Ctx) (uint, string) {
	claims := auth.SessionClaims(c)
	if claims == nil {
		return 0, ""
	}

	var user models.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil {
		return claims.UserID, claims.Email
	}
	return user.ID, user.Name
}

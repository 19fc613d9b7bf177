package audit

import (
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs
// ?entity_type=invoice&limit=100
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		limit := c.QueryInt("limit", 100)
		if limit < 1 || limit > 500 {
			limit = 100
		}

		q := database.DB.
			Where("tenant_id = ?", tenantID).
			Order("created_at DESC").
			Limit(limit)

		if et := c.Query("entity_type"); et != "" {
			q = q.Where("entity_type = ?", et)
		}

		var logs []models.AuditLog
		if err := q.Find(&logs).Error; err != nil {
			if database.IsMissingRelation(err) {
				return c.JSON([]models.AuditLog{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar okunamadı")
		}

		return c.JSON(logs)
	}
}

package finance

import (
	"strings"

	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateSafeRequest struct {
	Name string `json:"name"`
}

type UpdateSafeRequest struct {
	Name *string `json:"name"`
}

type SafeResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt string          `json:"created_at"`
}

func toSafeResponse(s *models.Safe) SafeResponse {
	return SafeResponse{
		ID:        s.ID,
		Name:      s.Name,
		Balance:   s.Balance,
		CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/safes
func ListSafesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var safes []models.Safe
		if err := database.DB.
			Where("tenant_id = ?", tenantID).
			Order("name ASC").
			Find(&safes).Error; err != nil {
			if database.IsMissingRelation(err) {
				return c.JSON([]SafeResponse{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kasalar listelenemedi")
		}

		resp := make([]SafeResponse, 0, len(safes))
		for i := range safes {
			resp = append(resp, toSafeResponse(&safes[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/safes/:id
func GetSafeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var safe models.Safe
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&safe).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kasa bulunamadı")
		}

		return c.JSON(toSafeResponse(&safe))
	}
}

// POST /api/safes
func CreateSafeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var body CreateSafeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
		}

		safe := models.Safe{
			TenantID: tenantID,
			Name:     strings.TrimSpace(body.Name),
			Balance:  decimal.Zero,
		}

		if err := database.DB.Create(&safe).Error; err != nil {
			if database.IsMissingRelation(err) {
				return fiber.NewError(fiber.StatusInternalServerError, "Tablo mevcut değil: safes")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa kaydedilemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "safe",
			EntityID:    safe.ID,
			Action:      models.AuditActionCreate,
			Description: "Kasa oluşturuldu: " + safe.Name,
			After:       toSafeResponse(&safe),
		})

		return c.Status(fiber.StatusCreated).JSON(toSafeResponse(&safe))
	}
}

// PUT /api/safes/:id
// Bakiye buradan güncellenmez; kasa bakiyesi yalnızca işlemlerle değişir.
func UpdateSafeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var safe models.Safe
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&safe).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kasa bulunamadı")
		}
		before := toSafeResponse(&safe)

		var body UpdateSafeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Name != nil {
			if strings.TrimSpace(*body.Name) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			safe.Name = strings.TrimSpace(*body.Name)
		}

		if err := database.DB.Save(&safe).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa güncellenemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "safe",
			EntityID:   safe.ID,
			Action:     models.AuditActionUpdate,
			Before:     before,
			After:      toSafeResponse(&safe),
		})

		return c.JSON(toSafeResponse(&safe))
	}
}

// DELETE /api/safes/:id
func DeleteSafeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var safe models.Safe
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&safe).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kasa bulunamadı")
		}

		if err := database.DB.Delete(&safe).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa silinemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "safe",
			EntityID:   safe.ID,
			Action:     models.AuditActionDelete,
			Before:     toSafeResponse(&safe),
		})

		return c.JSON(fiber.Map{"success": true})
	}
}

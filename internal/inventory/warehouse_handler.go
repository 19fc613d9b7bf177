package inventory

import (
	"strings"

	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
)

type CreateWarehouseRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type UpdateWarehouseRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

type WarehouseResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	CreatedAt string `json:"created_at"`
}

func toWarehouseResponse(w *models.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/warehouses
func ListWarehousesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var warehouses []models.Warehouse
		if err := database.DB.
			Where("tenant_id = ?", tenantID).
			Order("name ASC").
			Find(&warehouses).Error; err != nil {
			if database.IsMissingRelation(err) {
				return c.JSON([]WarehouseResponse{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Depolar listelenemedi")
		}

		resp := make([]WarehouseResponse, 0, len(warehouses))
		for i := range warehouses {
			resp = append(resp, toWarehouseResponse(&warehouses[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/warehouses/:id
func GetWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var warehouse models.Warehouse
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&warehouse).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Depo bulunamadı")
		}

		return c.JSON(toWarehouseResponse(&warehouse))
	}
}

// POST /api/warehouses
func CreateWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var body CreateWarehouseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
		}

		warehouse := models.Warehouse{
			TenantID: tenantID,
			Name:     strings.TrimSpace(body.Name),
			Address:  body.Address,
		}

		if err := database.DB.Create(&warehouse).Error; err != nil {
			if database.IsMissingRelation(err) {
				return fiber.NewError(fiber.StatusInternalServerError, "Tablo mevcut değil: warehouses")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Depo kaydedilemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "warehouse",
			EntityID:    warehouse.ID,
			Action:      models.AuditActionCreate,
			Description: "Depo oluşturuldu: " + warehouse.Name,
			After:       toWarehouseResponse(&warehouse),
		})

		return c.Status(fiber.StatusCreated).JSON(toWarehouseResponse(&warehouse))
	}
}

// PUT /api/warehouses/:id
func UpdateWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var warehouse models.Warehouse
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&warehouse).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Depo bulunamadı")
		}
		before := toWarehouseResponse(&warehouse)

		var body UpdateWarehouseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Name != nil {
			if strings.TrimSpace(*body.Name) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			warehouse.Name = strings.TrimSpace(*body.Name)
		}
		if body.Address != nil {
			warehouse.Address = *body.Address
		}

		if err := database.DB.Save(&warehouse).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Depo güncellenemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "warehouse",
			EntityID:   warehouse.ID,
			Action:     models.AuditActionUpdate,
			Before:     before,
			After:      toWarehouseResponse(&warehouse),
		})

		return c.JSON(toWarehouseResponse(&warehouse))
	}
}

// DELETE /api/warehouses/:id
func DeleteWarehouseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var warehouse models.Warehouse
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&warehouse).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Depo bulunamadı")
		}

		if err := database.DB.Delete(&warehouse).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Depo silinemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "warehouse",
			EntityID:   warehouse.ID,
			Action:     models.AuditActionDelete,
			Before:     toWarehouseResponse(&warehouse),
		})

		return c.JSON(fiber.Map{"success": true})
	}
}

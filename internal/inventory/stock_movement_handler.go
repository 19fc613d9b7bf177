package inventory

import (
	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/ledger"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateStockMovementRequest struct {
	ProductID    uint            `json:"product_id"`
	MovementType string          `json:"movement_type"` // IN / OUT
	Quantity     float64         `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
}

type UpdateStockMovementRequest struct {
	MovementType *string          `json:"movement_type"`
	Quantity     *float64         `json:"quantity"`
	Price        *decimal.Decimal `json:"price"`
	Description  *string          `json:"description"`
}

type StockMovementResponse struct {
	ID           uint            `json:"id"`
	ProductID    uint            `json:"product_id"`
	MovementType string          `json:"movement_type"`
	Quantity     float64         `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	CreatedAt    string          `json:"created_at"`
}

func toMovementResponse(m *models.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		MovementType: string(m.MovementType),
		Quantity:     m.Quantity,
		Price:        m.Price,
		Description:  m.Description,
		CreatedAt:    m.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/stock-movements
// ?product_id=1
func ListStockMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		q := database.DB.Where("tenant_id = ?", tenantID).Order("created_at DESC, id DESC")
		if pid := c.QueryInt("product_id", 0); pid > 0 {
			q = q.Where("product_id = ?", pid)
		}

		var movements []models.StockMovement
		if err := q.Find(&movements).Error; err != nil {
			if database.IsMissingRelation(err) {
				return c.JSON([]StockMovementResponse{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketleri listelenemedi")
		}

		resp := make([]StockMovementResponse, 0, len(movements))
		for i := range movements {
			resp = append(resp, toMovementResponse(&movements[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/stock-movements/:id
func GetStockMovementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var movement models.StockMovement
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&movement).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok hareketi bulunamadı")
		}

		return c.JSON(toMovementResponse(&movement))
	}
}

// POST /api/stock-movements
// Hareket yazılır, ürünün stok miktarı tüm hareket setinden yeniden
// hesaplanır; ikisi tek transaction'dadır.
func CreateStockMovementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var body CreateStockMovementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
		}
		if body.MovementType != string(models.MovementTypeIn) && body.MovementType != string(models.MovementTypeOut) {
			return fiber.NewError(fiber.StatusBadRequest, "movement_type 'IN' veya 'OUT' olmalı")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity 0'dan büyük olmalı")
		}

		var product models.Product
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", body.ProductID, tenantID).
			First(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		movement := models.StockMovement{
			TenantID:     tenantID,
			ProductID:    product.ID,
			MovementType: models.MovementType(body.MovementType),
			Quantity:     body.Quantity,
			Price:        body.Price,
			Description:  body.Description,
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
			return ledger.RecomputeProductStock(tx, tenantID, product.ID)
		})
		if txErr != nil {
			if database.IsMissingRelation(txErr) {
				return fiber.NewError(fiber.StatusInternalServerError, "Tablo mevcut değil: stock_movements")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketi kaydedilemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "stock_movement",
			EntityID:    movement.ID,
			Action:      models.AuditActionCreate,
			Description: "Stok hareketi: " + product.Name,
			After:       toMovementResponse(&movement),
		})

		return c.Status(fiber.StatusCreated).JSON(toMovementResponse(&movement))
	}
}

// PUT /api/stock-movements/:id
func UpdateStockMovementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var movement models.StockMovement
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&movement).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok hareketi bulunamadı")
		}
		before := toMovementResponse(&movement)

		var body UpdateStockMovementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.MovementType != nil {
			if *body.MovementType != string(models.MovementTypeIn) && *body.MovementType != string(models.MovementTypeOut) {
				return fiber.NewError(fiber.StatusBadRequest, "movement_type 'IN' veya 'OUT' olmalı")
			}
			movement.MovementType = models.MovementType(*body.MovementType)
		}
		if body.Quantity != nil {
			if *body.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "quantity 0'dan büyük olmalı")
			}
			movement.Quantity = *body.Quantity
		}
		if body.Price != nil {
			movement.Price = *body.Price
		}
		if body.Description != nil {
			movement.Description = *body.Description
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&movement).Error; err != nil {
				return err
			}
			return ledger.RecomputeProductStock(tx, tenantID, movement.ProductID)
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketi güncellenemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "stock_movement",
			EntityID:   movement.ID,
			Action:     models.AuditActionUpdate,
			Before:     before,
			After:      toMovementResponse(&movement),
		})

		return c.JSON(toMovementResponse(&movement))
	}
}

// DELETE /api/stock-movements/:id
func DeleteStockMovementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var movement models.StockMovement
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&movement).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok hareketi bulunamadı")
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&movement).Error; err != nil {
				return err
			}
			return ledger.RecomputeProductStock(tx, tenantID, movement.ProductID)
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok hareketi silinemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "stock_movement",
			EntityID:   movement.ID,
			Action:     models.AuditActionDelete,
			Before:     toMovementResponse(&movement),
		})

		return c.JSON(fiber.Map{"success": true})
	}
}

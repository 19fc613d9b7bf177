package inventory

import (
	"strings"

	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateProductRequest struct {
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Barcode       string          `json:"barcode"`
	BuyPrice      decimal.Decimal `json:"buy_price"`
	SellPrice     decimal.Decimal `json:"sell_price"`
	VatRate       float64         `json:"vat_rate"`
	CriticalLevel float64         `json:"critical_level"`
	CategoryID    *uint           `json:"category_id"`
	WarehouseID   *uint           `json:"warehouse_id"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	SKU           *string          `json:"sku"`
	Barcode       *string          `json:"barcode"`
	BuyPrice      *decimal.Decimal `json:"buy_price"`
	SellPrice     *decimal.Decimal `json:"sell_price"`
	VatRate       *float64         `json:"vat_rate"`
	CriticalLevel *float64         `json:"critical_level"`
	CategoryID    *uint            `json:"category_id"`
	WarehouseID   *uint            `json:"warehouse_id"`
}

type ProductResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Barcode       string          `json:"barcode"`
	BuyPrice      decimal.Decimal `json:"buy_price"`
	SellPrice     decimal.Decimal `json:"sell_price"`
	VatRate       float64         `json:"vat_rate"`
	StockQuantity float64         `json:"stock_quantity"`
	CriticalLevel float64         `json:"critical_level"`
	LowStock      bool            `json:"low_stock"`
	CategoryID    *uint           `json:"category_id"`
	WarehouseID   *uint           `json:"warehouse_id"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		BuyPrice:      p.BuyPrice,
		SellPrice:     p.SellPrice,
		VatRate:       p.VatRate,
		StockQuantity: p.StockQuantity,
		CriticalLevel: p.CriticalLevel,
		LowStock:      p.LowStock(),
		CategoryID:    p.CategoryID,
		WarehouseID:   p.WarehouseID,
		CreatedAt:     p.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     p.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/products
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var products []models.Product
		if err := database.DB.
			Where("tenant_id = ?", tenantID).
			Order("name ASC").
			Find(&products).Error; err != nil {
			if database.IsMissingRelation(err) {
				return c.JSON([]ProductResponse{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		resp := make([]ProductResponse, 0, len(products))
		for i := range products {
			resp = append(resp, toProductResponse(&products[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/products/low-stock
// Stok miktarı kritik seviyeye eşit veya altında olan ürünler.
func ListLowStockProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var products []models.Product
		if err := database.DB.
			Where("tenant_id = ? AND stock_quantity <= critical_level", tenantID).
			Order("name ASC").
			Find(&products).Error; err != nil {
			if database.IsMissingRelation(err) {
				return c.JSON([]ProductResponse{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		resp := make([]ProductResponse, 0, len(products))
		for i := range products {
			resp = append(resp, toProductResponse(&products[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/products/:id
func GetProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var product models.Product
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		return c.JSON(toProductResponse(&product))
	}
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
		}

		// Kategori/depo verildiyse aynı tenant'ta olmalı
		if body.CategoryID != nil {
			var category models.Category
			if err := database.DB.
				Where("id = ? AND tenant_id = ?", *body.CategoryID, tenantID).
				First(&category).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
			}
		}
		if body.WarehouseID != nil {
			var warehouse models.Warehouse
			if err := database.DB.
				Where("id = ? AND tenant_id = ?", *body.WarehouseID, tenantID).
				First(&warehouse).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Depo bulunamadı")
			}
		}

		product := models.Product{
			TenantID:      tenantID,
			Name:          strings.TrimSpace(body.Name),
			SKU:           body.SKU,
			Barcode:       body.Barcode,
			BuyPrice:      body.BuyPrice,
			SellPrice:     body.SellPrice,
			VatRate:       body.VatRate,
			StockQuantity: 0,
			CriticalLevel: body.CriticalLevel,
			CategoryID:    body.CategoryID,
			WarehouseID:   body.WarehouseID,
		}

		if err := database.DB.Create(&product).Error; err != nil {
			if database.IsMissingRelation(err) {
				return fiber.NewError(fiber.StatusInternalServerError, "Tablo mevcut değil: products")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün kaydedilemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionCreate,
			Description: "Ürün oluşturuldu: " + product.Name,
			After:       toProductResponse(&product),
		})

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&product))
	}
}

// PUT /api/products/:id
// stock_quantity buradan güncellenmez; stok yalnızca hareket defteri
// üzerinden değişir.
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var product models.Product
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}
		before := toProductResponse(&product)

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Name != nil {
			if strings.TrimSpace(*body.Name) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			product.Name = strings.TrimSpace(*body.Name)
		}
		if body.SKU != nil {
			product.SKU = *body.SKU
		}
		if body.Barcode != nil {
			product.Barcode = *body.Barcode
		}
		if body.BuyPrice != nil {
			product.BuyPrice = *body.BuyPrice
		}
		if body.SellPrice != nil {
			product.SellPrice = *body.SellPrice
		}
		if body.VatRate != nil {
			product.VatRate = *body.VatRate
		}
		if body.CriticalLevel != nil {
			product.CriticalLevel = *body.CriticalLevel
		}
		if body.CategoryID != nil {
			var category models.Category
			if err := database.DB.
				Where("id = ? AND tenant_id = ?", *body.CategoryID, tenantID).
				First(&category).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
			}
			product.CategoryID = body.CategoryID
		}
		if body.WarehouseID != nil {
			var warehouse models.Warehouse
			if err := database.DB.
				Where("id = ? AND tenant_id = ?", *body.WarehouseID, tenantID).
				First(&warehouse).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Depo bulunamadı")
			}
			product.WarehouseID = body.WarehouseID
		}

		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionUpdate,
			Description: "Ürün güncellendi: " + product.Name,
			Before:      before,
			After:       toProductResponse(&product),
		})

		return c.JSON(toProductResponse(&product))
	}
}

// DELETE /api/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var product models.Product
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		if err := database.DB.Delete(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product",
			EntityID:    product.ID,
			Action:      models.AuditActionDelete,
			Description: "Ürün silindi: " + product.Name,
			Before:      toProductResponse(&product),
		})

		return c.JSON(fiber.Map{"success": true})
	}
}

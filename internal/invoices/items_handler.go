package invoices

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

type CreateInvoiceItemRequest struct {
	InvoiceID uint            `json:"invoice_id"`
	ProductID uint            `json:"product_id"`
	Quantity  float64         `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	VatRate   float64         `json:"vat_rate"`
}

type UpdateInvoiceItemRequest struct {
	Quantity  *float64         `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	VatRate   *float64         `json:"vat_rate"`
}

type InvoiceItemResponse struct {
	ID        uint            `json:"id"`
	InvoiceID uint            `json:"invoice_id"`
	ProductID uint            `json:"product_id"`
	Quantity  float64         `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	VatRate   float64         `json:"vat_rate"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
	CreatedAt string          `json:"created_at"`
}

func toItemResponse(it *models.InvoiceItem) InvoiceItemResponse {
	return InvoiceItemResponse{
		ID:        it.ID,
		InvoiceID: it.InvoiceID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		UnitPrice: it.UnitPrice,
		VatRate:   it.VatRate,
		Total:     it.Total,
		Currency:  string(it.Currency),
		CreatedAt: it.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// recomputeInvoiceTotals: faturanın subtotal'ını kalem toplamlarından
// baştan hesaplar, total'ı da buna göre günceller.
func recomputeInvoiceTotals(tx *gorm.DB, tenantID string, invoiceID uint) error {
	var inv models.Invoice
	if err := tx.
		Where("id = ? AND tenant_id = ?", invoiceID, tenantID).
		First(&inv).Error; err != nil {
		return err
	}

	type sumRow struct {
		Total decimal.Decimal
	}
	var row sumRow
	if err := tx.Model(&models.InvoiceItem{}).
		Select("COALESCE(SUM(total), 0) as total").
		Where("invoice_id = ? AND tenant_id = ?", invoiceID, tenantID).
		Scan(&row).Error; err != nil {
		return err
	}

	inv.Subtotal = row.Total
	inv.TotalAmount = inv.Subtotal.Sub(inv.Discount).Add(inv.VatAmount)
	return tx.Save(&inv).Error
}

// GET /api/invoice-items
// ?invoice_id=1
func ListInvoiceItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		q := database.DB.Where("tenant_id = ?", tenantID).Order("id ASC")
		if iid := c.QueryInt("invoice_id", 0); iid > 0 {
			q = q.Where("invoice_id = ?", iid)
		}

		var items []models.InvoiceItem
		if err := q.Find(&items).Error; err != nil {
			if database.IsMissingRelation(err) {
				return c.JSON([]InvoiceItemResponse{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura kalemleri listelenemedi")
		}

		resp := make([]InvoiceItemResponse, 0, len(items))
		for i := range items {
			resp = append(resp, toItemResponse(&items[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/invoice-items/:id
func GetInvoiceItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var item models.InvoiceItem
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura kalemi bulunamadı")
		}

		return c.JSON(toItemResponse(&item))
	}
}

// POST /api/invoice-items
//
// Kalem + stok hareketi + stok yeniden hesabı + fatura toplamlarının
// güncellenmesi tek transaction'dır. Cari bakiyeye dokunulmaz; bakiye
// etkisi fatura kesilirken uygulanmıştır.
func CreateInvoiceItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var body CreateInvoiceItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.InvoiceID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invoice_id zorunlu")
		}
		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
		}
		if body.Quantity <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "quantity 0'dan büyük olmalı")
		}

		var inv models.Invoice
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", body.InvoiceID, tenantID).
			First(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura bulunamadı")
		}

		var product models.Product
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", body.ProductID, tenantID).
			First(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		item := models.InvoiceItem{
			TenantID:  tenantID,
			InvoiceID: inv.ID,
			ProductID: product.ID,
			Quantity:  body.Quantity,
			UnitPrice: body.UnitPrice,
			VatRate:   body.VatRate,
			Total:     itemTotal(body.Quantity, body.UnitPrice, body.VatRate),
			Currency:  inv.Currency,
		}

		movementType := models.MovementTypeOut
		if inv.InvoiceType == models.InvoiceTypePurchase {
			movementType = models.MovementTypeIn
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&item).Error; err != nil {
				return err
			}

			if !inv.IsDraft {
				movement := models.StockMovement{
					TenantID:     tenantID,
					ProductID:    product.ID,
					MovementType: movementType,
					Quantity:     body.Quantity,
					Price:        body.UnitPrice,
					Description:  "Fatura " + inv.InvoiceNumber,
				}
				if err := tx.Create(&movement).Error; err != nil {
					return err
				}
				if err := ledger.RecomputeProductStock(tx, tenantID, product.ID); err != nil {
					return err
				}
			}

			return recomputeInvoiceTotals(tx, tenantID, inv.ID)
		})
		if txErr != nil {
			if database.IsMissingRelation(txErr) {
				return fiber.NewError(fiber.StatusInternalServerError, "Tablo mevcut değil: invoice_items")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura kalemi kaydedilemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "invoice_item",
			EntityID:    item.ID,
			Action:      models.AuditActionCreate,
			Description: "Fatura kalemi eklendi: " + inv.InvoiceNumber,
			After:       toItemResponse(&item),
		})

		return c.Status(fiber.StatusCreated).JSON(toItemResponse(&item))
	}
}

// PUT /api/invoice-items/:id
func UpdateInvoiceItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var item models.InvoiceItem
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura kalemi bulunamadı")
		}
		before := toItemResponse(&item)

		var body UpdateInvoiceItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Quantity != nil {
			if *body.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "quantity 0'dan büyük olmalı")
			}
			item.Quantity = *body.Quantity
		}
		if body.UnitPrice != nil {
			item.UnitPrice = *body.UnitPrice
		}
		if body.VatRate != nil {
			item.VatRate = *body.VatRate
		}
		item.Total = itemTotal(item.Quantity, item.UnitPrice, item.VatRate)

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
			return recomputeInvoiceTotals(tx, tenantID, item.InvoiceID)
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura kalemi güncellenemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "invoice_item",
			EntityID:   item.ID,
			Action:     models.AuditActionUpdate,
			Before:     before,
			After:      toItemResponse(&item),
		})

		return c.JSON(toItemResponse(&item))
	}
}

// DELETE /api/invoice-items/:id
func DeleteInvoiceItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var item models.InvoiceItem
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&item).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura kalemi bulunamadı")
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&item).Error; err != nil {
				return err
			}
			return recomputeInvoiceTotals(tx, tenantID, item.InvoiceID)
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura kalemi silinemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "invoice_item",
			EntityID:   item.ID,
			Action:     models.AuditActionDelete,
			Before:     toItemResponse(&item),
		})

		return c.JSON(fiber.Map{"success": true})
	}
}

package invoices

import (
	"fmt"
	"time"

	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/ledger"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InvoiceItemInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  float64         `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	VatRate   float64         `json:"vat_rate"`
}

type CreateInvoiceRequest struct {
	InvoiceType string          `json:"invoice_type"` // SALES / PURCHASE
	Date        string          `json:"date"`         // "2025-12-09", boşsa bugün
	AccountID   uint            `json:"account_id"`
	Subtotal    decimal.Decimal `json:"subtotal"` // kalem verilmişse kalemlerden hesaplanır
	Discount    decimal.Decimal `json:"discount"`
	VatAmount   decimal.Decimal `json:"vat_amount"`
	Currency    string          `json:"currency"` // TRY / USD
	IsDraft     bool            `json:"is_draft"`
	Items       []InvoiceItemInput `json:"items"`
}

type UpdateInvoiceRequest struct {
	Date      *string          `json:"date"`
	Subtotal  *decimal.Decimal `json:"subtotal"`
	Discount  *decimal.Decimal `json:"discount"`
	VatAmount *decimal.Decimal `json:"vat_amount"`
	Currency  *string          `json:"currency"`
	IsDraft   *bool            `json:"is_draft"`
}

type InvoiceResponse struct {
	ID            uint            `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceType   string          `json:"invoice_type"`
	Date          string          `json:"date"`
	AccountID     uint            `json:"account_id"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	VatAmount     decimal.Decimal `json:"vat_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	IsDraft       bool            `json:"is_draft"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

func toInvoiceResponse(inv *models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceType:   string(inv.InvoiceType),
		Date:          inv.Date.Format("2006-01-02"),
		AccountID:     inv.AccountID,
		Subtotal:      inv.Subtotal,
		Discount:      inv.Discount,
		VatAmount:     inv.VatAmount,
		TotalAmount:   inv.TotalAmount,
		Currency:      string(inv.Currency),
		IsDraft:       inv.IsDraft,
		CreatedAt:     inv.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     inv.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// itemTotal: miktar x birim fiyat + KDV payı, 2 haneye yuvarlanır.
func itemTotal(quantity float64, unitPrice decimal.Decimal, vatRate float64) decimal.Decimal {
	base := unitPrice.Mul(decimal.NewFromFloat(quantity))
	vat := base.Mul(decimal.NewFromFloat(vatRate)).Div(decimal.NewFromInt(100))
	return base.Add(vat).Round(2)
}

func generateInvoiceNumber(t models.InvoiceType) string {
	prefix := "SAT"
	if t == models.InvoiceTypePurchase {
		prefix = "ALM"
	}
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixMilli())
}

func parseCurrency(s string) (models.Currency, error) {
	switch s {
	case "", string(models.CurrencyTRY):
		return models.CurrencyTRY, nil
	case string(models.CurrencyUSD):
		return models.CurrencyUSD, nil
	}
	return "", fiber.NewError(fiber.StatusBadRequest, "currency 'TRY' veya 'USD' olmalı")
}

// GET /api/invoices
// ?type=SALES|PURCHASE&account_id=1
func ListInvoicesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		q := database.DB.Where("tenant_id = ?", tenantID).Order("date DESC, id DESC")
		if t := c.Query("type"); t != "" {
			q = q.Where("invoice_type = ?", t)
		}
		if aid := c.QueryInt("account_id", 0); aid > 0 {
			q = q.Where("account_id = ?", aid)
		}

		var invoices []models.Invoice
		if err := q.Find(&invoices).Error; err != nil {
			if database.IsMissingRelation(err) {
				return c.JSON([]InvoiceResponse{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Faturalar listelenemedi")
		}

		resp := make([]InvoiceResponse, 0, len(invoices))
		for i := range invoices {
			resp = append(resp, toInvoiceResponse(&invoices[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/invoices/:id
func GetInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var inv models.Invoice
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura bulunamadı")
		}

		return c.JSON(toInvoiceResponse(&inv))
	}
}

// POST /api/invoices
//
// Kalemli akış tek transaction'dır: fatura -> her kalem için (kalem
// satırı + stok hareketi + stok yeniden hesabı) -> cari bakiye deltası.
// Ara adım başarısız olursa hiçbir yazma kalıcı olmaz. Taslak faturalar
// bakiye ve stok etkisi yaratmaz.
func CreateInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var body CreateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.InvoiceType != string(models.InvoiceTypeSales) && body.InvoiceType != string(models.InvoiceTypePurchase) {
			return fiber.NewError(fiber.StatusBadRequest, "invoice_type 'SALES' veya 'PURCHASE' olmalı")
		}
		if body.AccountID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "account_id zorunlu")
		}
		currency, err := parseCurrency(body.Currency)
		if err != nil {
			return err
		}
		for _, it := range body.Items {
			if it.ProductID == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kalemlerde product_id zorunlu")
			}
			if it.Quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Kalem miktarı 0'dan büyük olmalı")
			}
		}

		date := time.Now()
		if body.Date != "" {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			date = d
		}

		// Hesap bu tenant'a ait mi?
		var account models.CurrentAccount
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", body.AccountID, tenantID).
			First(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
		}

		subtotal := body.Subtotal
		if len(body.Items) > 0 {
			subtotal = decimal.Zero
			for _, it := range body.Items {
				subtotal = subtotal.Add(itemTotal(it.Quantity, it.UnitPrice, it.VatRate))
			}
		}
		total := subtotal.Sub(body.Discount).Add(body.VatAmount)

		invoiceType := models.InvoiceType(body.InvoiceType)
		inv := models.Invoice{
			TenantID:      tenantID,
			InvoiceNumber: generateInvoiceNumber(invoiceType),
			InvoiceType:   invoiceType,
			Date:          date,
			AccountID:     account.ID,
			Subtotal:      subtotal,
			Discount:      body.Discount,
			VatAmount:     body.VatAmount,
			TotalAmount:   total,
			Currency:      currency,
			IsDraft:       body.IsDraft,
		}

		movementType := models.MovementTypeOut
		if invoiceType == models.InvoiceTypePurchase {
			movementType = models.MovementTypeIn
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&inv).Error; err != nil {
				return err
			}

			for _, it := range body.Items {
				var product models.Product
				if err := tx.
					Where("id = ? AND tenant_id = ?", it.ProductID, tenantID).
					First(&product).Error; err != nil {
					return fmt.Errorf("ürün bulunamadı: %d", it.ProductID)
				}

				item := models.InvoiceItem{
					TenantID:  tenantID,
					InvoiceID: inv.ID,
					ProductID: product.ID,
					Quantity:  it.Quantity,
					UnitPrice: it.UnitPrice,
					VatRate:   it.VatRate,
					Total:     itemTotal(it.Quantity, it.UnitPrice, it.VatRate),
					Currency:  currency,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}

				if !inv.IsDraft {
					movement := models.StockMovement{
						TenantID:     tenantID,
						ProductID:    product.ID,
						MovementType: movementType,
						Quantity:     it.Quantity,
						Price:        it.UnitPrice,
						Description:  "Fatura " + inv.InvoiceNumber,
					}
					if err := tx.Create(&movement).Error; err != nil {
						return err
					}
					if err := ledger.RecomputeProductStock(tx, tenantID, product.ID); err != nil {
						return err
					}
				}
			}

			if !inv.IsDraft {
				return ledger.ApplyAccountDelta(tx, tenantID, account.ID,
					ledger.InvoiceDelta(invoiceType, inv.TotalAmount))
			}
			return nil
		})
		if txErr != nil {
			if database.IsMissingRelation(txErr) {
				return fiber.NewError(fiber.StatusInternalServerError, "Tablo mevcut değil: invoices")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura kaydedilemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "invoice",
			EntityID:    inv.ID,
			Action:      models.AuditActionCreate,
			Description: "Fatura oluşturuldu: " + inv.InvoiceNumber,
			After:       toInvoiceResponse(&inv),
		})

		return c.Status(fiber.StatusCreated).JSON(toInvoiceResponse(&inv))
	}
}

// PUT /api/invoices/:id
//
// Toplam, subtotal - discount + vat_amount olarak yeniden hesaplanır.
// Geçmiş bakiye/stok etkileri geri alınmaz; fatura kesildikten sonra
// tarihçedir.
func UpdateInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var inv models.Invoice
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura bulunamadı")
		}
		before := toInvoiceResponse(&inv)

		var body UpdateInvoiceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			inv.Date = d
		}
		if body.Subtotal != nil {
			inv.Subtotal = *body.Subtotal
		}
		if body.Discount != nil {
			inv.Discount = *body.Discount
		}
		if body.VatAmount != nil {
			inv.VatAmount = *body.VatAmount
		}
		if body.Currency != nil {
			currency, err := parseCurrency(*body.Currency)
			if err != nil {
				return err
			}
			inv.Currency = currency
		}
		if body.IsDraft != nil {
			inv.IsDraft = *body.IsDraft
		}

		inv.TotalAmount = inv.Subtotal.Sub(inv.Discount).Add(inv.VatAmount)

		if err := database.DB.Save(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura güncellenemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "invoice",
			EntityID:    inv.ID,
			Action:      models.AuditActionUpdate,
			Description: "Fatura güncellendi: " + inv.InvoiceNumber,
			Before:      before,
			After:       toInvoiceResponse(&inv),
		})

		return c.JSON(toInvoiceResponse(&inv))
	}
}

// DELETE /api/invoices/:id
// Kalemler faturayla birlikte silinir; önceki bakiye/stok etkileri
// geri alınmaz.
func DeleteInvoiceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var inv models.Invoice
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&inv).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Fatura bulunamadı")
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.
				Where("invoice_id = ? AND tenant_id = ?", inv.ID, tenantID).
				Delete(&models.InvoiceItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&inv).Error
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Fatura silinemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "invoice",
			EntityID:    inv.ID,
			Action:      models.AuditActionDelete,
			Description: "Fatura silindi: " + inv.InvoiceNumber,
			Before:      toInvoiceResponse(&inv),
		})

		return c.JSON(fiber.Map{"success": true})
	}
}

package finance

import (
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

type CreateTransactionRequest struct {
	TransactionType string          `json:"transaction_type"` // COLLECTION / PAYMENT
	Amount          decimal.Decimal `json:"amount"`
	AccountID       *uint           `json:"account_id"`
	SafeID          *uint           `json:"safe_id"`
	BankID          *uint           `json:"bank_id"`
	Date            string          `json:"date"` // "2025-12-09", boşsa bugün
	Description     string          `json:"description"`
}

type UpdateTransactionRequest struct {
	TransactionType *string          `json:"transaction_type"`
	Amount          *decimal.Decimal `json:"amount"`
	Date            *string          `json:"date"`
	Description     *string          `json:"description"`
}

type TransactionResponse struct {
	ID              uint            `json:"id"`
	TransactionType string          `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	AccountID       *uint           `json:"account_id"`
	SafeID          *uint           `json:"safe_id"`
	BankID          *uint           `json:"bank_id"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	CreatedAt       string          `json:"created_at"`
}

func toTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		TransactionType: string(t.TransactionType),
		Amount:          t.Amount,
		AccountID:       t.AccountID,
		SafeID:          t.SafeID,
		BankID:          t.BankID,
		Date:            t.Date.Format("2006-01-02"),
		Description:     t.Description,
		CreatedAt:       t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/transactions
// ?account_id=1&safe_id=2&bank_id=3
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		q := database.DB.Where("tenant_id = ?", tenantID).Order("date DESC, id DESC")
		if aid := c.QueryInt("account_id", 0); aid > 0 {
			q = q.Where("account_id = ?", aid)
		}
		if sid := c.QueryInt("safe_id", 0); sid > 0 {
			q = q.Where("safe_id = ?", sid)
		}
		if bid := c.QueryInt("bank_id", 0); bid > 0 {
			q = q.Where("bank_id = ?", bid)
		}

		var transactions []models.Transaction
		if err := q.Find(&transactions).Error; err != nil {
			if database.IsMissingRelation(err) {
				return c.JSON([]TransactionResponse{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "İşlemler listelenemedi")
		}

		resp := make([]TransactionResponse, 0, len(transactions))
		for i := range transactions {
			resp = append(resp, toTransactionResponse(&transactions[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/transactions/:id
func GetTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var t models.Transaction
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İşlem bulunamadı")
		}

		return c.JSON(toTransactionResponse(&t))
	}
}

// POST /api/transactions
// İşlem kaydı ve bakiye etkileri tek transaction'da uygulanır.
func CreateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var body CreateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.TransactionType != string(models.TransactionTypeCollection) && body.TransactionType != string(models.TransactionTypePayment) {
			return fiber.NewError(fiber.StatusBadRequest, "transaction_type 'COLLECTION' veya 'PAYMENT' olmalı")
		}
		if body.Amount.LessThanOrEqual(decimal.Zero) {
			return fiber.NewError(fiber.StatusBadRequest, "amount 0'dan büyük olmalı")
		}
		if body.AccountID == nil && body.SafeID == nil && body.BankID == nil {
			return fiber.NewError(fiber.StatusBadRequest, "account_id, safe_id veya bank_id'den en az biri zorunlu")
		}

		date := time.Now()
		if body.Date != "" {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			date = d
		}

		// Referanslar bu tenant'a ait mi?
		if body.AccountID != nil {
			var account models.CurrentAccount
			if err := database.DB.
				Where("id = ? AND tenant_id = ?", *body.AccountID, tenantID).
				First(&account).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
			}
		}
		if body.SafeID != nil {
			var safe models.Safe
			if err := database.DB.
				Where("id = ? AND tenant_id = ?", *body.SafeID, tenantID).
				First(&safe).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Kasa bulunamadı")
			}
		}
		if body.BankID != nil {
			var bank models.Bank
			if err := database.DB.
				Where("id = ? AND tenant_id = ?", *body.BankID, tenantID).
				First(&bank).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Banka bulunamadı")
			}
		}

		t := models.Transaction{
			TenantID:        tenantID,
			TransactionType: models.TransactionType(body.TransactionType),
			Amount:          body.Amount,
			AccountID:       body.AccountID,
			SafeID:          body.SafeID,
			BankID:          body.BankID,
			Date:            date,
			Description:     body.Description,
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&t).Error; err != nil {
				return err
			}
			return ledger.ApplyTransaction(tx, &t, 1)
		})
		if txErr != nil {
			if database.IsMissingRelation(txErr) {
				return fiber.NewError(fiber.StatusInternalServerError, "Tablo mevcut değil: transactions")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem kaydedilemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "transaction",
			EntityID:    t.ID,
			Action:      models.AuditActionCreate,
			Description: "Kasa işlemi oluşturuldu",
			After:       toTransactionResponse(&t),
		})

		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(&t))
	}
}

// PUT /api/transactions/:id
// Eski etki geri alınır, yeni etki uygulanır; ikisi ve kayıt güncellemesi
// tek transaction'dadır.
func UpdateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var t models.Transaction
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İşlem bulunamadı")
		}
		before := toTransactionResponse(&t)
		old := t

		var body UpdateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.TransactionType != nil {
			if *body.TransactionType != string(models.TransactionTypeCollection) && *body.TransactionType != string(models.TransactionTypePayment) {
				return fiber.NewError(fiber.StatusBadRequest, "transaction_type 'COLLECTION' veya 'PAYMENT' olmalı")
			}
			t.TransactionType = models.TransactionType(*body.TransactionType)
		}
		if body.Amount != nil {
			if body.Amount.LessThanOrEqual(decimal.Zero) {
				return fiber.NewError(fiber.StatusBadRequest, "amount 0'dan büyük olmalı")
			}
			t.Amount = *body.Amount
		}
		if body.Date != nil {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
			}
			t.Date = d
		}
		if body.Description != nil {
			t.Description = *body.Description
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := ledger.ApplyTransaction(tx, &old, -1); err != nil {
				return err
			}
			if err := tx.Save(&t).Error; err != nil {
				return err
			}
			return ledger.ApplyTransaction(tx, &t, 1)
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem güncellenemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "transaction",
			EntityID:   t.ID,
			Action:     models.AuditActionUpdate,
			Before:     before,
			After:      toTransactionResponse(&t),
		})

		return c.JSON(toTransactionResponse(&t))
	}
}

// DELETE /api/transactions/:id
// Kasa defteri kaydı canlı düzeltmedir: silinince bakiye etkisi geri alınır.
func DeleteTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var t models.Transaction
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İşlem bulunamadı")
		}

		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := ledger.ApplyTransaction(tx, &t, -1); err != nil {
				return err
			}
			return tx.Delete(&t).Error
		})
		if txErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem silinemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "transaction",
			EntityID:   t.ID,
			Action:     models.AuditActionDelete,
			Before:     toTransactionResponse(&t),
		})

		return c.JSON(fiber.Map{"success": true})
	}
}

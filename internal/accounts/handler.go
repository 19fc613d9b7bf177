package accounts

import (
	"strings"

	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateCurrentAccountRequest struct {
	Name        string `json:"name"`
	AccountType string `json:"account_type"` // CUSTOMER / SUPPLIER
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	TaxNumber   string `json:"tax_number"`
}

type UpdateCurrentAccountRequest struct {
	Name        *string `json:"name"`
	AccountType *string `json:"account_type"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
	TaxNumber   *string `json:"tax_number"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateBalanceRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

type CurrentAccountResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	AccountType string          `json:"account_type"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	Address     string          `json:"address"`
	TaxNumber   string          `json:"tax_number"`
	Balance     decimal.Decimal `json:"balance"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

func toResponse(a *models.CurrentAccount) CurrentAccountResponse {
	return CurrentAccountResponse{
		ID:          a.ID,
		Name:        a.Name,
		AccountType: string(a.AccountType),
		Phone:       a.Phone,
		Email:       a.Email,
		Address:     a.Address,
		TaxNumber:   a.TaxNumber,
		Balance:     a.Balance,
		IsActive:    a.IsActive,
		CreatedAt:   a.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   a.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/current-accounts
// ?type=CUSTOMER|SUPPLIER
func ListCurrentAccountsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		q := database.DB.Where("tenant_id = ?", tenantID).Order("name ASC")
		if t := c.Query("type"); t != "" {
			q = q.Where("account_type = ?", t)
		}

		var accounts []models.CurrentAccount
		if err := q.Find(&accounts).Error; err != nil {
			// Yeni tenant'ta tablo henüz oluşmamış olabilir; boş liste dön
			if database.IsMissingRelation(err) {
				return c.JSON([]CurrentAccountResponse{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Cari hesaplar listelenemedi")
		}

		resp := make([]CurrentAccountResponse, 0, len(accounts))
		for i := range accounts {
			resp = append(resp, toResponse(&accounts[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/current-accounts/:id
func GetCurrentAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var account models.CurrentAccount
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&account).Error; err != nil {
			// Başka tenant'a ait kayıt da "bulunamadı"dır; varlık sızdırılmaz
			return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
		}

		return c.JSON(toResponse(&account))
	}
}

// POST /api/current-accounts
func CreateCurrentAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var body CreateCurrentAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
		}

		accountType := models.AccountTypeCustomer
		if body.AccountType != "" {
			if body.AccountType != string(models.AccountTypeCustomer) && body.AccountType != string(models.AccountTypeSupplier) {
				return fiber.NewError(fiber.StatusBadRequest, "account_type 'CUSTOMER' veya 'SUPPLIER' olmalı")
			}
			accountType = models.AccountType(body.AccountType)
		}

		// tenant_id sunucu tarafında damgalanır; client'tan gelen tenant
		// alanları hiçbir koşulda kullanılmaz. Bakiye her zaman 0 başlar.
		account := models.CurrentAccount{
			TenantID:    tenantID,
			Name:        strings.TrimSpace(body.Name),
			AccountType: accountType,
			Phone:       body.Phone,
			Email:       body.Email,
			Address:     body.Address,
			TaxNumber:   body.TaxNumber,
			Balance:     decimal.Zero,
			IsActive:    true,
		}

		if err := database.DB.Create(&account).Error; err != nil {
			if database.IsMissingRelation(err) {
				return fiber.NewError(fiber.StatusInternalServerError, "Tablo mevcut değil: current_accounts")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Cari hesap kaydedilemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "current_account",
			EntityID:    account.ID,
			Action:      models.AuditActionCreate,
			Description: "Cari hesap oluşturuldu: " + account.Name,
			After:       toResponse(&account),
		})

		return c.Status(fiber.StatusCreated).JSON(toResponse(&account))
	}
}

// PUT /api/current-accounts/:id
func UpdateCurrentAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var account models.CurrentAccount
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
		}
		before := toResponse(&account)

		var body UpdateCurrentAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Name != nil {
			if strings.TrimSpace(*body.Name) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			account.Name = strings.TrimSpace(*body.Name)
		}
		if body.AccountType != nil {
			if *body.AccountType != string(models.AccountTypeCustomer) && *body.AccountType != string(models.AccountTypeSupplier) {
				return fiber.NewError(fiber.StatusBadRequest, "account_type 'CUSTOMER' veya 'SUPPLIER' olmalı")
			}
			account.AccountType = models.AccountType(*body.AccountType)
		}
		if body.Phone != nil {
			account.Phone = *body.Phone
		}
		if body.Email != nil {
			account.Email = *body.Email
		}
		if body.Address != nil {
			account.Address = *body.Address
		}
		if body.TaxNumber != nil {
			account.TaxNumber = *body.TaxNumber
		}
		if body.IsActive != nil {
			account.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari hesap güncellenemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "current_account",
			EntityID:    account.ID,
			Action:      models.AuditActionUpdate,
			Description: "Cari hesap güncellendi: " + account.Name,
			Before:      before,
			After:       toResponse(&account),
		})

		return c.JSON(toResponse(&account))
	}
}

// DELETE /api/current-accounts/:id
func DeleteCurrentAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var account models.CurrentAccount
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
		}

		if err := database.DB.Delete(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari hesap silinemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "current_account",
			EntityID:    account.ID,
			Action:      models.AuditActionDelete,
			Description: "Cari hesap silindi: " + account.Name,
			Before:      toResponse(&account),
		})

		return c.JSON(fiber.Map{"success": true})
	}
}

// PUT /api/current-accounts/:id/balance
// Bakiyeyi doğrudan set eder (düzeltme/devir girişi için).
func UpdateBalanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var body UpdateBalanceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		var account models.CurrentAccount
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
		}
		before := toResponse(&account)

		account.Balance = body.Balance
		if err := database.DB.Save(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bakiye güncellenemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "current_account",
			EntityID:    account.ID,
			Action:      models.AuditActionUpdate,
			Description: "Bakiye elle güncellendi: " + account.Name,
			Before:      before,
			After:       toResponse(&account),
		})

		return c.JSON(toResponse(&account))
	}
}

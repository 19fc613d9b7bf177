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

type CreateBankRequest struct {
	Name string `json:"name"`
	IBAN string `json:"iban"`
}

type UpdateBankRequest struct {
	Name *string `json:"name"`
	IBAN *string `json:"iban"`
}

type BankResponse struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	IBAN      string          `json:"iban"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt string          `json:"created_at"`
}

func toBankResponse(b *models.Bank) BankResponse {
	return BankResponse{
		ID:        b.ID,
		Name:      b.Name,
		IBAN:      b.IBAN,
		Balance:   b.Balance,
		CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// GET /api/banks
func ListBanksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var banks []models.Bank
		if err := database.DB.
			Where("tenant_id = ?", tenantID).
			Order("name ASC").
			Find(&banks).Error; err != nil {
			if database.IsMissingRelation(err) {
				return c.JSON([]BankResponse{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Bankalar listelenemedi")
		}

		resp := make([]BankResponse, 0, len(banks))
		for i := range banks {
			resp = append(resp, toBankResponse(&banks[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/banks/:id
func GetBankHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var bank models.Bank
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&bank).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Banka bulunamadı")
		}

		return c.JSON(toBankResponse(&bank))
	}
}

// POST /api/banks
func CreateBankHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var body CreateBankRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if strings.TrimSpace(body.Name) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
		}

		bank := models.Bank{
			TenantID: tenantID,
			Name:     strings.TrimSpace(body.Name),
			IBAN:     strings.ReplaceAll(body.IBAN, " ", ""),
			Balance:  decimal.Zero,
		}

		if err := database.DB.Create(&bank).Error; err != nil {
			if database.IsMissingRelation(err) {
				return fiber.NewError(fiber.StatusInternalServerError, "Tablo mevcut değil: banks")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Banka kaydedilemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "bank",
			EntityID:    bank.ID,
			Action:      models.AuditActionCreate,
			Description: "Banka oluşturuldu: " + bank.Name,
			After:       toBankResponse(&bank),
		})

		return c.Status(fiber.StatusCreated).JSON(toBankResponse(&bank))
	}
}

// PUT /api/banks/:id
func UpdateBankHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var bank models.Bank
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&bank).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Banka bulunamadı")
		}
		before := toBankResponse(&bank)

		var body UpdateBankRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Name != nil {
			if strings.TrimSpace(*body.Name) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "name boş olamaz")
			}
			bank.Name = strings.TrimSpace(*body.Name)
		}
		if body.IBAN != nil {
			bank.IBAN = strings.ReplaceAll(*body.IBAN, " ", "")
		}

		if err := database.DB.Save(&bank).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Banka güncellenemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "bank",
			EntityID:   bank.ID,
			Action:     models.AuditActionUpdate,
			Before:     before,
			After:      toBankResponse(&bank),
		})

		return c.JSON(toBankResponse(&bank))
	}
}

// DELETE /api/banks/:id
func DeleteBankHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var bank models.Bank
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&bank).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Banka bulunamadı")
		}

		if err := database.DB.Delete(&bank).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Banka silinemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "bank",
			EntityID:   bank.ID,
			Action:     models.AuditActionDelete,
			Before:     toBankResponse(&bank),
		})

		return c.JSON(fiber.Map{"success": true})
	}
}

package finance

import (
	"strings"
	"time"

	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateChequeRequest struct {
	ChequeType   string          `json:"cheque_type"` // CHEQUE / PROMISSORY_NOTE
	Amount       decimal.Decimal `json:"amount"`
	IssueDate    string          `json:"issue_date"`    // "2025-12-09"
	MaturityDate string          `json:"maturity_date"` // "2026-03-09"
	IssuerName   string          `json:"issuer_name"`
	AccountID    *uint           `json:"account_id"`
}

type UpdateChequeRequest struct {
	Amount       *decimal.Decimal `json:"amount"`
	IssueDate    *string          `json:"issue_date"`
	MaturityDate *string          `json:"maturity_date"`
	IssuerName   *string          `json:"issuer_name"`
	Status       *string          `json:"status"` // PENDING / COLLECTED / BOUNCED
}

type ChequeResponse struct {
	ID           uint            `json:"id"`
	ChequeType   string          `json:"cheque_type"`
	Amount       decimal.Decimal `json:"amount"`
	IssueDate    string          `json:"issue_date"`
	MaturityDate string          `json:"maturity_date"`
	IssuerName   string          `json:"issuer_name"`
	AccountID    *uint           `json:"account_id"`
	Status       string          `json:"status"`
	CreatedAt    string          `json:"created_at"`
}

func toChequeResponse(ch *models.Cheque) ChequeResponse {
	return ChequeResponse{
		ID:           ch.ID,
		ChequeType:   string(ch.ChequeType),
		Amount:       ch.Amount,
		IssueDate:    ch.IssueDate.Format("2006-01-02"),
		MaturityDate: ch.MaturityDate.Format("2006-01-02"),
		IssuerName:   ch.IssuerName,
		AccountID:    ch.AccountID,
		Status:       string(ch.Status),
		CreatedAt:    ch.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func validChequeStatus(s string) bool {
	switch models.ChequeStatus(s) {
	case models.ChequeStatusPending, models.ChequeStatusCollected, models.ChequeStatusBounced:
		return true
	}
	return false
}

// GET /api/cheques
// ?status=PENDING
func ListChequesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		q := database.DB.Where("tenant_id = ?", tenantID).Order("maturity_date ASC")
		if s := c.Query("status"); s != "" {
			q = q.Where("status = ?", s)
		}

		var cheques []models.Cheque
		if err := q.Find(&cheques).Error; err != nil {
			if database.IsMissingRelation(err) {
				return c.JSON([]ChequeResponse{})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Çekler listelenemedi")
		}

		resp := make([]ChequeResponse, 0, len(cheques))
		for i := range cheques {
			resp = append(resp, toChequeResponse(&cheques[i]))
		}
		return c.JSON(resp)
	}
}

// GET /api/cheques/:id
func GetChequeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var cheque models.Cheque
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&cheque).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çek bulunamadı")
		}

		return c.JSON(toChequeResponse(&cheque))
	}
}

// POST /api/cheques
func CreateChequeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var body CreateChequeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.ChequeType != string(models.ChequeTypeCheque) && body.ChequeType != string(models.ChequeTypePromissoryNote) {
			return fiber.NewError(fiber.StatusBadRequest, "cheque_type 'CHEQUE' veya 'PROMISSORY_NOTE' olmalı")
		}
		if body.Amount.LessThanOrEqual(decimal.Zero) {
			return fiber.NewError(fiber.StatusBadRequest, "amount 0'dan büyük olmalı")
		}
		if strings.TrimSpace(body.IssuerName) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "issuer_name boş olamaz")
		}

		issueDate := time.Now()
		if body.IssueDate != "" {
			d, err := time.Parse("2006-01-02", body.IssueDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "issue_date formatı 'YYYY-MM-DD' olmalı")
			}
			issueDate = d
		}
		maturityDate := issueDate
		if body.MaturityDate != "" {
			d, err := time.Parse("2006-01-02", body.MaturityDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "maturity_date formatı 'YYYY-MM-DD' olmalı")
			}
			maturityDate = d
		}

		if body.AccountID != nil {
			var account models.CurrentAccount
			if err := database.DB.
				Where("id = ? AND tenant_id = ?", *body.AccountID, tenantID).
				First(&account).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Cari hesap bulunamadı")
			}
		}

		cheque := models.Cheque{
			TenantID:     tenantID,
			ChequeType:   models.ChequeType(body.ChequeType),
			Amount:       body.Amount,
			IssueDate:    issueDate,
			MaturityDate: maturityDate,
			IssuerName:   strings.TrimSpace(body.IssuerName),
			AccountID:    body.AccountID,
			Status:       models.ChequeStatusPending,
		}

		if err := database.DB.Create(&cheque).Error; err != nil {
			if database.IsMissingRelation(err) {
				return fiber.NewError(fiber.StatusInternalServerError, "Tablo mevcut değil: cheques")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Çek kaydedilemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:    tenantID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "cheque",
			EntityID:    cheque.ID,
			Action:      models.AuditActionCreate,
			Description: "Çek/senet oluşturuldu: " + cheque.IssuerName,
			After:       toChequeResponse(&cheque),
		})

		return c.Status(fiber.StatusCreated).JSON(toChequeResponse(&cheque))
	}
}

// PUT /api/cheques/:id
func UpdateChequeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var cheque models.Cheque
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&cheque).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çek bulunamadı")
		}
		before := toChequeResponse(&cheque)

		var body UpdateChequeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz veri")
		}

		if body.Amount != nil {
			if body.Amount.LessThanOrEqual(decimal.Zero) {
				return fiber.NewError(fiber.StatusBadRequest, "amount 0'dan büyük olmalı")
			}
			cheque.Amount = *body.Amount
		}
		if body.IssueDate != nil {
			d, err := time.Parse("2006-01-02", *body.IssueDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "issue_date formatı 'YYYY-MM-DD' olmalı")
			}
			cheque.IssueDate = d
		}
		if body.MaturityDate != nil {
			d, err := time.Parse("2006-01-02", *body.MaturityDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "maturity_date formatı 'YYYY-MM-DD' olmalı")
			}
			cheque.MaturityDate = d
		}
		if body.IssuerName != nil {
			if strings.TrimSpace(*body.IssuerName) == "" {
				return fiber.NewError(fiber.StatusBadRequest, "issuer_name boş olamaz")
			}
			cheque.IssuerName = strings.TrimSpace(*body.IssuerName)
		}
		if body.Status != nil {
			if !validChequeStatus(*body.Status) {
				return fiber.NewError(fiber.StatusBadRequest, "status 'PENDING', 'COLLECTED' veya 'BOUNCED' olmalı")
			}
			cheque.Status = models.ChequeStatus(*body.Status)
		}

		if err := database.DB.Save(&cheque).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çek güncellenemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "cheque",
			EntityID:   cheque.ID,
			Action:     models.AuditActionUpdate,
			Before:     before,
			After:      toChequeResponse(&cheque),
		})

		return c.JSON(toChequeResponse(&cheque))
	}
}

// DELETE /api/cheques/:id
func DeleteChequeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := tenant.FromCtx(c)
		if err != nil {
			return err
		}

		var cheque models.Cheque
		if err := database.DB.
			Where("id = ? AND tenant_id = ?", c.Params("id"), tenantID).
			First(&cheque).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çek bulunamadı")
		}

		if err := database.DB.Delete(&cheque).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çek silinemedi")
		}

		userID, userName := audit.Actor(c)
		_ = audit.WriteLog(audit.LogOptions{
			TenantID:   tenantID,
			UserID:     userID,
			UserName:   userName,
			EntityType: "cheque",
			EntityID:   cheque.ID,
			Action:     models.AuditActionDelete,
			Before:     toChequeResponse(&cheque),
		})

		return c.JSON(fiber.Map{"success": true})
	}
}

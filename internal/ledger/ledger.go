package ledger

import (
	"muhasebe-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bakiye mutasyonları read-modify-write yerine store seviyesinde tek
// UPDATE ile yapılır (balance = balance + delta). Aynı hesaba eşzamanlı
// iki fatura kesildiğinde kayıp güncelleme oluşmaz.

func ApplyAccountDelta(db *gorm.DB, tenantID string, accountID uint, delta decimal.Decimal) error {
	res := db.Model(&models.CurrentAccount{}).
		Where("id = ? AND tenant_id = ?", accountID, tenantID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func ApplySafeDelta(db *gorm.DB, tenantID string, safeID uint, delta decimal.Decimal) error {
	res := db.Model(&models.Safe{}).
		Where("id = ? AND tenant_id = ?", safeID, tenantID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func ApplyBankDelta(db *gorm.DB, tenantID string, bankID uint, delta decimal.Decimal) error {
	res := db.Model(&models.Bank{}).
		Where("id = ? AND tenant_id = ?", bankID, tenantID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// InvoiceDelta: faturanın cari hesaba net etkisi.
// Satış alacağı artırır, alış borcu artırır (negatif delta).
func InvoiceDelta(invoiceType models.InvoiceType, total decimal.Decimal) decimal.Decimal {
	if invoiceType == models.InvoiceTypeSales {
		return total
	}
	return total.Neg()
}

// ApplyTransaction: kasa defteri kaydının referans verdiği kasa/banka/cari
// bakiyelerine etkisini uygular. sign=-1 ile çağrılırsa etki geri alınır
// (silme ve güncelleme akışları için).
//
// Tahsilat kasaya/bankaya girer, cari alacağını düşer; ödeme tersidir.
func ApplyTransaction(db *gorm.DB, t *models.Transaction, sign int64) error {
	amount := t.Amount.Mul(decimal.NewFromInt(sign))

	cashDelta := amount
	accountDelta := amount.Neg()
	if t.TransactionType == models.TransactionTypePayment {
		cashDelta = amount.Neg()
		accountDelta = amount
	}

	if t.SafeID != nil {
		if err := ApplySafeDelta(db, t.TenantID, *t.SafeID, cashDelta); err != nil {
			return err
		}
	}
	if t.BankID != nil {
		if err := ApplyBankDelta(db, t.TenantID, *t.BankID, cashDelta); err != nil {
			return err
		}
	}
	if t.AccountID != nil {
		if err := ApplyAccountDelta(db, t.TenantID, *t.AccountID, accountDelta); err != nil {
			return err
		}
	}
	return nil
}

// RecomputeProductStock: ürünün stok miktarını hareket setinin
// tamamından baştan hesaplar ve ürün satırına yazar. Artımlı +/-
// yerine tam tarama; sıra dışı düzenleme, mükerrer çağrı veya kaçan
// bir olay sonrası sistem kendini onarır.
func RecomputeProductStock(db *gorm.DB, tenantID string, productID uint) error {
	var total float64
	err := db.Model(&models.StockMovement{}).
		Select("COALESCE(SUM(CASE WHEN movement_type = ? THEN quantity ELSE -quantity END), 0)", models.MovementTypeIn).
		Where("product_id = ? AND tenant_id = ?", productID, tenantID).
		Scan(&total).Error
	if err != nil {
		return err
	}

	res := db.Model(&models.Product{}).
		Where("id = ? AND tenant_id = ?", productID, tenantID).
		Update("stock_quantity", total)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package database

import (
	"errors"
	"log"
	"strings"

	"muhasebe-backend/internal/config"
	"muhasebe-backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate: tüm tenant-scoped tabloları oluşturur/günceller.
// Testler aynı listeyi sqlite üzerinde kullanır.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.CurrentAccount{},
		&models.Category{},
		&models.Warehouse{},
		&models.Product{},
		&models.StockMovement{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Safe{},
		&models.Bank{},
		&models.Transaction{},
		&models.Cheque{},
		&models.AuditLog{},
	)
}

// IsMissingRelation: sorgunun hedef tablosunun henüz var olmadığını
// bildiren hataları yakalar. Liste okumaları bu durumda boş koleksiyona
// düşer, yazmalar ise açık bir hata döndürür.
func IsMissingRelation(err error) bool {
	if err == nil {
		return false
	}

	// Postgres: undefined_table
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "42P01" {
		return true
	}

	// sqlite (test ortamı)
	msg := err.Error()
	if strings.Contains(msg, "no such table") {
		return true
	}
	return strings.Contains(msg, "does not exist") && strings.Contains(msg, "relation")
}

package server

import (
	"log"
	"strings"

	"muhasebe-backend/internal/accounts"
	"muhasebe-backend/internal/audit"
	"muhasebe-backend/internal/auth"
	"muhasebe-backend/internal/config"
	"muhasebe-backend/internal/finance"
	"muhasebe-backend/internal/inventory"
	"muhasebe-backend/internal/invoices"
	"muhasebe-backend/internal/tenant"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// New: tüm route'larıyla fiber uygulamasını kurar. main ve testler
// aynı kurulumu kullanır.
func New(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Tenant-Id",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth (rate limitli)
	authRoutes := api.Group("/auth")
	authRoutes.Use(RateLimit(cfg.AuthRate))
	authRoutes.Post("/signup", auth.SignupHandler(cfg))
	authRoutes.Post("/login", auth.LoginHandler(cfg))

	// Oturum + tenant zinciri: önce token çözülür, sonra tenant.
	// Tenant çözümlenemeden hiçbir entity handler'ı çalışmaz.
	protected := api.Group("")
	protected.Use(auth.SessionMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	scoped := protected.Group("")
	scoped.Use(tenant.Middleware())

	// Cari hesaplar
	scoped.Get("/current-accounts", accounts.ListCurrentAccountsHandler())
	scoped.Post("/current-accounts", accounts.CreateCurrentAccountHandler())
	scoped.Get("/current-accounts/:id", accounts.GetCurrentAccountHandler())
	scoped.Put("/current-accounts/:id", accounts.UpdateCurrentAccountHandler())
	scoped.Delete("/current-accounts/:id", accounts.DeleteCurrentAccountHandler())
	scoped.Put("/current-accounts/:id/balance", accounts.UpdateBalanceHandler())

	// Faturalar
	scoped.Get("/invoices", invoices.ListInvoicesHandler())
	scoped.Post("/invoices", invoices.CreateInvoiceHandler())
	scoped.Get("/invoices/:id", invoices.GetInvoiceHandler())
	scoped.Put("/invoices/:id", invoices.UpdateInvoiceHandler())
	scoped.Delete("/invoices/:id", invoices.DeleteInvoiceHandler())

	// Fatura kalemleri
	scoped.Get("/invoice-items", invoices.ListInvoiceItemsHandler())
	scoped.Post("/invoice-items", invoices.CreateInvoiceItemHandler())
	scoped.Get("/invoice-items/:id", invoices.GetInvoiceItemHandler())
	scoped.Put("/invoice-items/:id", invoices.UpdateInvoiceItemHandler())
	scoped.Delete("/invoice-items/:id", invoices.DeleteInvoiceItemHandler())

	// Ürünler
	scoped.Get("/products", inventory.ListProductsHandler())
	scoped.Get("/products/low-stock", inventory.ListLowStockProductsHandler())
	scoped.Post("/products", inventory.CreateProductHandler())
	scoped.Get("/products/:id", inventory.GetProductHandler())
	scoped.Put("/products/:id", inventory.UpdateProductHandler())
	scoped.Delete("/products/:id", inventory.DeleteProductHandler())

	// Kategoriler
	scoped.Get("/categories", inventory.ListCategoriesHandler())
	scoped.Post("/categories", inventory.CreateCategoryHandler())
	scoped.Get("/categories/:id", inventory.GetCategoryHandler())
	scoped.Put("/categories/:id", inventory.UpdateCategoryHandler())
	scoped.Delete("/categories/:id", inventory.DeleteCategoryHandler())

	// Depolar
	scoped.Get("/warehouses", inventory.ListWarehousesHandler())
	scoped.Post("/warehouses", inventory.CreateWarehouseHandler())
	scoped.Get("/warehouses/:id", inventory.GetWarehouseHandler())
	scoped.Put("/warehouses/:id", inventory.UpdateWarehouseHandler())
	scoped.Delete("/warehouses/:id", inventory.DeleteWarehouseHandler())

	// Stok hareketleri
	scoped.Get("/stock-movements", inventory.ListStockMovementsHandler())
	scoped.Post("/stock-movements", inventory.CreateStockMovementHandler())
	scoped.Get("/stock-movements/:id", inventory.GetStockMovementHandler())
	scoped.Put("/stock-movements/:id", inventory.UpdateStockMovementHandler())
	scoped.Delete("/stock-movements/:id", inventory.DeleteStockMovementHandler())

	// Kasa işlemleri
	scoped.Get("/transactions", finance.ListTransactionsHandler())
	scoped.Post("/transactions", finance.CreateTransactionHandler())
	scoped.Get("/transactions/:id", finance.GetTransactionHandler())
	scoped.Put("/transactions/:id", finance.UpdateTransactionHandler())
	scoped.Delete("/transactions/:id", finance.DeleteTransactionHandler())

	// Kasalar
	scoped.Get("/safes", finance.ListSafesHandler())
	scoped.Post("/safes", finance.CreateSafeHandler())
	scoped.Get("/safes/:id", finance.GetSafeHandler())
	scoped.Put("/safes/:id", finance.UpdateSafeHandler())
	scoped.Delete("/safes/:id", finance.DeleteSafeHandler())

	// Bankalar
	scoped.Get("/banks", finance.ListBanksHandler())
	scoped.Post("/banks", finance.CreateBankHandler())
	scoped.Get("/banks/:id", finance.GetBankHandler())
	scoped.Put("/banks/:id", finance.UpdateBankHandler())
	scoped.Delete("/banks/:id", finance.DeleteBankHandler())

	// Çek/senet
	scoped.Get("/cheques", finance.ListChequesHandler())
	scoped.Post("/cheques", finance.CreateChequeHandler())
	scoped.Get("/cheques/:id", finance.GetChequeHandler())
	scoped.Put("/cheques/:id", finance.UpdateChequeHandler())
	scoped.Delete("/cheques/:id", finance.DeleteChequeHandler())

	// Audit logs
	scoped.Get("/audit-logs", audit.ListAuditLogsHandler())

	return app
}

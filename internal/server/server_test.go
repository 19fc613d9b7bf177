package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"muhasebe-backend/internal/accounts"
	"muhasebe-backend/internal/config"
	"muhasebe-backend/internal/database"
	"muhasebe-backend/internal/finance"
	"muhasebe-backend/internal/inventory"
	"muhasebe-backend/internal/invoices"
	"muhasebe-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	tenant1 = "11111111-2222-3333-4444-555555555555"
	tenant2 = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:server_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	old := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = old })

	cfg := &config.Config{
		JWTSecret:   "test-secret-test-secret-test-secret!",
		CORSOrigins: "http://localhost:3000",
		AuthRate:    "1000-M",
	}
	return New(cfg)
}

type header map[string]string

func tenantHeader(id string) header {
	return header{"X-Tenant-Id": id}
}

func request(t *testing.T, app *fiber.App, method, path string, h header, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range h {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, data
}

func decodeInto(t *testing.T, data []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
}

func mustDecimal(t *testing.T, d decimal.Decimal, want int64, label string) {
	t.Helper()
	if !d.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("%s = %s, want %d", label, d, want)
	}
}

func TestSignupLoginAndMe(t *testing.T) {
	app := setupApp(t)

	status, data := request(t, app, http.MethodPost, "/api/auth/signup", nil, fiber.Map{
		"name":        "Ayşe",
		"email":       "ayse@example.com",
		"password":    "gizli-sifre",
		"companyName": "Ayşe Ticaret",
	})
	if status != http.StatusCreated {
		t.Fatalf("signup status = %d body=%s", status, data)
	}

	// Aynı email ikinci kez kabul edilmez.
	status, _ = request(t, app, http.MethodPost, "/api/auth/signup", nil, fiber.Map{
		"name":     "Ayşe 2",
		"email":    "ayse@example.com",
		"password": "baska-sifre",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("duplicate signup status = %d, want 400", status)
	}

	status, data = request(t, app, http.MethodPost, "/api/auth/login", nil, fiber.Map{
		"email":    "ayse@example.com",
		"password": "gizli-sifre",
	})
	if status != http.StatusOK {
		t.Fatalf("login status = %d body=%s", status, data)
	}
	var login struct {
		Token string `json:"token"`
		User  struct {
			TenantID string `json:"tenant_id"`
		} `json:"user"`
	}
	decodeInto(t, data, &login)
	if login.Token == "" {
		t.Fatal("login token empty")
	}
	if login.User.TenantID == "" {
		t.Fatal("login user tenant_id empty")
	}

	status, data = request(t, app, http.MethodGet, "/api/auth/me", header{"Authorization": "Bearer " + login.Token}, nil)
	if status != http.StatusOK {
		t.Fatalf("me status = %d body=%s", status, data)
	}
	var me struct {
		TenantID string `json:"tenant_id"`
	}
	decodeInto(t, data, &me)
	if me.TenantID != login.User.TenantID {
		t.Fatalf("me tenant = %s, want %s", me.TenantID, login.User.TenantID)
	}

	// Bozuk token anonim isteğe indirgenmez, oturum-kayıp koduyla 401 döner.
	status, data = request(t, app, http.MethodGet, "/api/auth/me", header{"Authorization": "Bearer bozuk.token.degeri"}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", status)
	}
	var sessionErr struct {
		Code string `json:"code"`
	}
	decodeInto(t, data, &sessionErr)
	if sessionErr.Code != "session_missing" {
		t.Fatalf("bad token code = %q, want session_missing", sessionErr.Code)
	}
}

func TestTenantResolutionErrors(t *testing.T) {
	app := setupApp(t)

	// Hiç kanıt yok: 401.
	status, _ := request(t, app, http.MethodGet, "/api/current-accounts", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("no tenant status = %d, want 401", status)
	}

	// UUID biçiminde olmayan header: veriye dokunmadan 400.
	status, _ = request(t, app, http.MethodGet, "/api/current-accounts", tenantHeader("DROP TABLE users"), nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad tenant status = %d, want 400", status)
	}
}

func TestTenantIsolation(t *testing.T) {
	app := setupApp(t)

	status, data := request(t, app, http.MethodPost, "/api/current-accounts", tenantHeader(tenant1), fiber.Map{
		"name":         "Mehmet İnşaat",
		"account_type": "CUSTOMER",
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", status, data)
	}
	var created accounts.CurrentAccountResponse
	decodeInto(t, data, &created)

	// Diğer tenant listede göremez.
	status, data = request(t, app, http.MethodGet, "/api/current-accounts", tenantHeader(tenant2), nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	var list []accounts.CurrentAccountResponse
	decodeInto(t, data, &list)
	if len(list) != 0 {
		t.Fatalf("tenant2 list len = %d, want 0", len(list))
	}

	// id ile de erişemez; "başka tenant'ta var" ile "hiç yok" ayırt edilemez.
	status, _ = request(t, app, http.MethodGet, fmt.Sprintf("/api/current-accounts/%d", created.ID), tenantHeader(tenant2), nil)
	if status != http.StatusNotFound {
		t.Fatalf("cross-tenant get status = %d, want 404", status)
	}

	status, _ = request(t, app, http.MethodGet, fmt.Sprintf("/api/current-accounts/%d", created.ID), tenantHeader(tenant1), nil)
	if status != http.StatusOK {
		t.Fatalf("own get status = %d, want 200", status)
	}
}

func TestTenantStampingIsServerAuthoritative(t *testing.T) {
	app := setupApp(t)

	// Gövdedeki tenant_id dikkate alınmaz, çözümlenen tenant yazılır.
	status, data := request(t, app, http.MethodPost, "/api/current-accounts", tenantHeader(tenant1), fiber.Map{
		"name":         "Sahte Tenant Denemesi",
		"account_type": "SUPPLIER",
		"tenant_id":    tenant2,
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", status, data)
	}
	var created accounts.CurrentAccountResponse
	decodeInto(t, data, &created)

	var row models.CurrentAccount
	if err := database.DB.First(&row, created.ID).Error; err != nil {
		t.Fatalf("row: %v", err)
	}
	if row.TenantID != tenant1 {
		t.Fatalf("persisted tenant = %s, want %s", row.TenantID, tenant1)
	}
}

func TestInvoiceEndToEnd(t *testing.T) {
	app := setupApp(t)

	status, data := request(t, app, http.MethodPost, "/api/current-accounts", tenantHeader(tenant1), fiber.Map{
		"name":         "Müşteri A",
		"account_type": "CUSTOMER",
	})
	if status != http.StatusCreated {
		t.Fatalf("account status = %d body=%s", status, data)
	}
	var account accounts.CurrentAccountResponse
	decodeInto(t, data, &account)
	mustDecimal(t, account.Balance, 0, "starting balance")

	createProduct := func(name string) inventory.ProductResponse {
		status, data := request(t, app, http.MethodPost, "/api/products", tenantHeader(tenant1), fiber.Map{
			"name": name,
		})
		if status != http.StatusCreated {
			t.Fatalf("product status = %d body=%s", status, data)
		}
		var p inventory.ProductResponse
		decodeInto(t, data, &p)
		return p
	}
	productX := createProduct("Ürün X")
	productY := createProduct("Ürün Y")

	// Başlangıç stoğu: her iki ürüne 10 giriş.
	for _, p := range []inventory.ProductResponse{productX, productY} {
		status, data := request(t, app, http.MethodPost, "/api/stock-movements", tenantHeader(tenant1), fiber.Map{
			"product_id":    p.ID,
			"movement_type": "IN",
			"quantity":      10,
		})
		if status != http.StatusCreated {
			t.Fatalf("movement status = %d body=%s", status, data)
		}
	}

	status, data = request(t, app, http.MethodPost, "/api/invoices", tenantHeader(tenant1), fiber.Map{
		"invoice_type": "SALES",
		"account_id":   account.ID,
		"currency":     "USD",
		"items": []fiber.Map{
			{"product_id": productX.ID, "quantity": 2, "unit_price": "50"},
			{"product_id": productY.ID, "quantity": 1, "unit_price": "50"},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("invoice status = %d body=%s", status, data)
	}
	var inv invoices.InvoiceResponse
	decodeInto(t, data, &inv)

	mustDecimal(t, inv.Subtotal, 150, "invoice subtotal")
	mustDecimal(t, inv.TotalAmount, 150, "invoice total")
	if inv.Currency != "USD" {
		t.Fatalf("currency = %s, want USD", inv.Currency)
	}
	if !strings.HasPrefix(inv.InvoiceNumber, "SAT-") {
		t.Fatalf("invoice number = %s, want SAT- prefix", inv.InvoiceNumber)
	}

	// Satış cari bakiyeyi artırır.
	status, data = request(t, app, http.MethodGet, fmt.Sprintf("/api/current-accounts/%d", account.ID), tenantHeader(tenant1), nil)
	if status != http.StatusOK {
		t.Fatalf("account get status = %d", status)
	}
	decodeInto(t, data, &account)
	mustDecimal(t, account.Balance, 150, "balance after sales")

	// Satış stoğu düşürür.
	checkStock := func(id uint, want float64) {
		status, data := request(t, app, http.MethodGet, fmt.Sprintf("/api/products/%d", id), tenantHeader(tenant1), nil)
		if status != http.StatusOK {
			t.Fatalf("product get status = %d", status)
		}
		var p inventory.ProductResponse
		decodeInto(t, data, &p)
		if p.StockQuantity != want {
			t.Fatalf("product %d stock = %v, want %v", id, p.StockQuantity, want)
		}
	}
	checkStock(productX.ID, 8)
	checkStock(productY.ID, 9)

	// Diğer tenant faturayı göremez.
	status, data = request(t, app, http.MethodGet, "/api/invoices", tenantHeader(tenant2), nil)
	if status != http.StatusOK {
		t.Fatalf("tenant2 list status = %d", status)
	}
	var otherList []invoices.InvoiceResponse
	decodeInto(t, data, &otherList)
	if len(otherList) != 0 {
		t.Fatalf("tenant2 invoice list len = %d, want 0", len(otherList))
	}
}

func TestPurchaseInvoiceDecreasesBalance(t *testing.T) {
	app := setupApp(t)

	status, data := request(t, app, http.MethodPost, "/api/current-accounts", tenantHeader(tenant1), fiber.Map{
		"name":         "Tedarikçi B",
		"account_type": "SUPPLIER",
	})
	if status != http.StatusCreated {
		t.Fatalf("account status = %d", status)
	}
	var account accounts.CurrentAccountResponse
	decodeInto(t, data, &account)

	status, data = request(t, app, http.MethodPost, "/api/invoices", tenantHeader(tenant1), fiber.Map{
		"invoice_type": "PURCHASE",
		"account_id":   account.ID,
		"subtotal":     "80",
	})
	if status != http.StatusCreated {
		t.Fatalf("invoice status = %d body=%s", status, data)
	}
	var inv invoices.InvoiceResponse
	decodeInto(t, data, &inv)
	if !strings.HasPrefix(inv.InvoiceNumber, "ALM-") {
		t.Fatalf("invoice number = %s, want ALM- prefix", inv.InvoiceNumber)
	}

	status, data = request(t, app, http.MethodGet, fmt.Sprintf("/api/current-accounts/%d", account.ID), tenantHeader(tenant1), nil)
	if status != http.StatusOK {
		t.Fatalf("account get status = %d", status)
	}
	decodeInto(t, data, &account)
	mustDecimal(t, account.Balance, -80, "balance after purchase")
}

func TestDraftInvoiceHasNoEffects(t *testing.T) {
	app := setupApp(t)

	status, data := request(t, app, http.MethodPost, "/api/current-accounts", tenantHeader(tenant1), fiber.Map{
		"name":         "Müşteri C",
		"account_type": "CUSTOMER",
	})
	if status != http.StatusCreated {
		t.Fatalf("account status = %d", status)
	}
	var account accounts.CurrentAccountResponse
	decodeInto(t, data, &account)

	status, data = request(t, app, http.MethodPost, "/api/products", tenantHeader(tenant1), fiber.Map{"name": "Ürün"})
	if status != http.StatusCreated {
		t.Fatalf("product status = %d", status)
	}
	var product inventory.ProductResponse
	decodeInto(t, data, &product)

	status, data = request(t, app, http.MethodPost, "/api/invoices", tenantHeader(tenant1), fiber.Map{
		"invoice_type": "SALES",
		"account_id":   account.ID,
		"is_draft":     true,
		"items": []fiber.Map{
			{"product_id": product.ID, "quantity": 3, "unit_price": "10"},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("draft invoice status = %d body=%s", status, data)
	}

	status, data = request(t, app, http.MethodGet, fmt.Sprintf("/api/current-accounts/%d", account.ID), tenantHeader(tenant1), nil)
	if status != http.StatusOK {
		t.Fatalf("account get status = %d", status)
	}
	decodeInto(t, data, &account)
	mustDecimal(t, account.Balance, 0, "balance after draft")

	var movementCount int64
	database.DB.Model(&models.StockMovement{}).Where("tenant_id = ?", tenant1).Count(&movementCount)
	if movementCount != 0 {
		t.Fatalf("movement count = %d, want 0", movementCount)
	}
}

func TestInvoiceTotalArithmetic(t *testing.T) {
	app := setupApp(t)

	status, data := request(t, app, http.MethodPost, "/api/current-accounts", tenantHeader(tenant1), fiber.Map{
		"name":         "Müşteri D",
		"account_type": "CUSTOMER",
	})
	if status != http.StatusCreated {
		t.Fatalf("account status = %d", status)
	}
	var account accounts.CurrentAccountResponse
	decodeInto(t, data, &account)

	// total = subtotal - discount + vat
	status, data = request(t, app, http.MethodPost, "/api/invoices", tenantHeader(tenant1), fiber.Map{
		"invoice_type": "SALES",
		"account_id":   account.ID,
		"subtotal":     "200",
		"discount":     "20",
		"vat_amount":   "36",
	})
	if status != http.StatusCreated {
		t.Fatalf("invoice status = %d body=%s", status, data)
	}
	var inv invoices.InvoiceResponse
	decodeInto(t, data, &inv)
	mustDecimal(t, inv.TotalAmount, 216, "total")

	// Güncelleme toplamı yeniden türetir.
	status, data = request(t, app, http.MethodPut, fmt.Sprintf("/api/invoices/%d", inv.ID), tenantHeader(tenant1), fiber.Map{
		"discount": "50",
	})
	if status != http.StatusOK {
		t.Fatalf("update status = %d body=%s", status, data)
	}
	decodeInto(t, data, &inv)
	mustDecimal(t, inv.TotalAmount, 186, "total after update")
}

func TestLowStockBoundary(t *testing.T) {
	app := setupApp(t)

	create := func(name string, critical float64, stockIn float64) inventory.ProductResponse {
		status, data := request(t, app, http.MethodPost, "/api/products", tenantHeader(tenant1), fiber.Map{
			"name":           name,
			"critical_level": critical,
		})
		if status != http.StatusCreated {
			t.Fatalf("product status = %d", status)
		}
		var p inventory.ProductResponse
		decodeInto(t, data, &p)
		if stockIn > 0 {
			status, _ = request(t, app, http.MethodPost, "/api/stock-movements", tenantHeader(tenant1), fiber.Map{
				"product_id":    p.ID,
				"movement_type": "IN",
				"quantity":      stockIn,
			})
			if status != http.StatusCreated {
				t.Fatalf("movement status = %d", status)
			}
		}
		return p
	}

	atBoundary := create("Sınırda", 5, 5) // stok == kritik seviye: düşük sayılır
	healthy := create("Yeterli", 5, 6)

	status, data := request(t, app, http.MethodGet, "/api/products/low-stock", tenantHeader(tenant1), nil)
	if status != http.StatusOK {
		t.Fatalf("low-stock status = %d", status)
	}
	var low []inventory.ProductResponse
	decodeInto(t, data, &low)

	ids := map[uint]bool{}
	for _, p := range low {
		ids[p.ID] = true
	}
	if !ids[atBoundary.ID] {
		t.Fatalf("boundary product %d not flagged low-stock", atBoundary.ID)
	}
	if ids[healthy.ID] {
		t.Fatalf("healthy product %d flagged low-stock", healthy.ID)
	}
}

func TestMissingRelationDegradation(t *testing.T) {
	app := setupApp(t)

	if err := database.DB.Migrator().DropTable(&models.Cheque{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	// Okumalar boş koleksiyona düşer.
	status, data := request(t, app, http.MethodGet, "/api/cheques", tenantHeader(tenant1), nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d body=%s", status, data)
	}
	var list []finance.ChequeResponse
	decodeInto(t, data, &list)
	if len(list) != 0 {
		t.Fatalf("list len = %d, want 0", len(list))
	}

	// Yazmalar açık hatayla kapanır.
	status, data = request(t, app, http.MethodPost, "/api/cheques", tenantHeader(tenant1), fiber.Map{
		"cheque_type": "CHEQUE",
		"amount":      "100",
		"issuer_name": "Veli",
	})
	if status != http.StatusInternalServerError {
		t.Fatalf("create status = %d body=%s", status, data)
	}
	if !bytes.Contains(data, []byte("Tablo mevcut değil")) {
		t.Fatalf("create body = %s, want missing table message", data)
	}
}

func TestValidationErrorsWriteNothing(t *testing.T) {
	app := setupApp(t)

	// issuer_name eksik çek.
	status, _ := request(t, app, http.MethodPost, "/api/cheques", tenantHeader(tenant1), fiber.Map{
		"cheque_type": "CHEQUE",
		"amount":      "100",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("cheque status = %d, want 400", status)
	}
	var chequeCount int64
	database.DB.Model(&models.Cheque{}).Count(&chequeCount)
	if chequeCount != 0 {
		t.Fatalf("cheque count = %d, want 0", chequeCount)
	}

	// İsimsiz cari hesap.
	status, _ = request(t, app, http.MethodPost, "/api/current-accounts", tenantHeader(tenant1), fiber.Map{
		"account_type": "CUSTOMER",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("account status = %d, want 400", status)
	}
	var accountCount int64
	database.DB.Model(&models.CurrentAccount{}).Count(&accountCount)
	if accountCount != 0 {
		t.Fatalf("account count = %d, want 0", accountCount)
	}

	// product_id eksik fatura kalemi.
	status, _ = request(t, app, http.MethodPost, "/api/invoice-items", tenantHeader(tenant1), fiber.Map{
		"invoice_id": 1,
		"quantity":   2,
		"unit_price": "10",
	})
	if status != http.StatusBadRequest {
		t.Fatalf("item status = %d, want 400", status)
	}
	var itemCount int64
	database.DB.Model(&models.InvoiceItem{}).Count(&itemCount)
	if itemCount != 0 {
		t.Fatalf("item count = %d, want 0", itemCount)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	app := setupApp(t)

	status, data := request(t, app, http.MethodPost, "/api/current-accounts", tenantHeader(tenant1), fiber.Map{
		"name":         "Müşteri E",
		"account_type": "CUSTOMER",
	})
	if status != http.StatusCreated {
		t.Fatalf("account status = %d", status)
	}
	var account accounts.CurrentAccountResponse
	decodeInto(t, data, &account)

	status, data = request(t, app, http.MethodPost, "/api/safes", tenantHeader(tenant1), fiber.Map{
		"name": "Ana Kasa",
	})
	if status != http.StatusCreated {
		t.Fatalf("safe status = %d", status)
	}
	var safe finance.SafeResponse
	decodeInto(t, data, &safe)

	status, data = request(t, app, http.MethodPost, "/api/transactions", tenantHeader(tenant1), fiber.Map{
		"transaction_type": "COLLECTION",
		"amount":           "200",
		"account_id":       account.ID,
		"safe_id":          safe.ID,
	})
	if status != http.StatusCreated {
		t.Fatalf("transaction status = %d body=%s", status, data)
	}
	var tr finance.TransactionResponse
	decodeInto(t, data, &tr)

	checkBalances := func(wantSafe, wantAccount int64) {
		t.Helper()
		status, data := request(t, app, http.MethodGet, fmt.Sprintf("/api/safes/%d", safe.ID), tenantHeader(tenant1), nil)
		if status != http.StatusOK {
			t.Fatalf("safe get status = %d", status)
		}
		var s finance.SafeResponse
		decodeInto(t, data, &s)
		mustDecimal(t, s.Balance, wantSafe, "safe balance")

		status, data = request(t, app, http.MethodGet, fmt.Sprintf("/api/current-accounts/%d", account.ID), tenantHeader(tenant1), nil)
		if status != http.StatusOK {
			t.Fatalf("account get status = %d", status)
		}
		var a accounts.CurrentAccountResponse
		decodeInto(t, data, &a)
		mustDecimal(t, a.Balance, wantAccount, "account balance")
	}

	// Tahsilat: kasa +200, cari -200.
	checkBalances(200, -200)

	// Güncelleme eski etkiyi geri alır, yenisini uygular.
	status, data = request(t, app, http.MethodPut, fmt.Sprintf("/api/transactions/%d", tr.ID), tenantHeader(tenant1), fiber.Map{
		"amount": "50",
	})
	if status != http.StatusOK {
		t.Fatalf("update status = %d body=%s", status, data)
	}
	checkBalances(50, -50)

	// Silme etkiyi tamamen geri alır.
	status, _ = request(t, app, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", tr.ID), tenantHeader(tenant1), nil)
	if status != http.StatusOK {
		t.Fatalf("delete status = %d", status)
	}
	checkBalances(0, 0)
}

func TestDirectBalanceSet(t *testing.T) {
	app := setupApp(t)

	status, data := request(t, app, http.MethodPost, "/api/current-accounts", tenantHeader(tenant1), fiber.Map{
		"name":         "Müşteri F",
		"account_type": "CUSTOMER",
	})
	if status != http.StatusCreated {
		t.Fatalf("account status = %d", status)
	}
	var account accounts.CurrentAccountResponse
	decodeInto(t, data, &account)

	status, data = request(t, app, http.MethodPut, fmt.Sprintf("/api/current-accounts/%d/balance", account.ID), tenantHeader(tenant1), fiber.Map{
		"balance": "42",
	})
	if status != http.StatusOK {
		t.Fatalf("balance set status = %d body=%s", status, data)
	}
	decodeInto(t, data, &account)
	mustDecimal(t, account.Balance, 42, "balance after direct set")
}

func TestAuthRateLimit(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:server_ratelimit?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	old := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = old })

	cfg := &config.Config{
		JWTSecret:   "test-secret-test-secret-test-secret!",
		CORSOrigins: "http://localhost:3000",
		AuthRate:    "3-M",
	}
	app := New(cfg)

	var last int
	for i := 0; i < 4; i++ {
		last, _ = request(t, app, http.MethodPost, "/api/auth/login", nil, fiber.Map{
			"email":    "kimse@example.com",
			"password": "yok",
		})
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("4th attempt status = %d, want 429", last)
	}
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTenant = "11111111-2222-3333-4444-555555555555"

// fakeSession her alan okunabilir bir SessionProvider.
type fakeSession struct {
	token  string
	tenant string
}

func (s *fakeSession) Token() string    { return s.token }
func (s *fakeSession) TenantID() string { return s.tenant }

func TestNoTenantSkipsNetwork(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeSession{}, Options{})

	_, err := c.List(context.Background(), "invoices")
	require.ErrorIs(t, err, ErrNoTenant)

	_, err = c.Create(context.Background(), "invoices", map[string]any{"subtotal": "10"})
	require.ErrorIs(t, err, ErrNoTenant)

	err = c.Delete(context.Background(), "invoices", "1")
	require.ErrorIs(t, err, ErrNoTenant)

	assert.Zero(t, atomic.LoadInt32(&hits), "tenant yokken ağa çıkılmamalı")
}

func TestHeadersRederivedPerCall(t *testing.T) {
	type seen struct {
		tenant string
		auth   string
	}
	var calls []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, seen{
			tenant: r.Header.Get("X-Tenant-Id"),
			auth:   r.Header.Get("Authorization"),
		})
		_ = json.NewEncoder(w).Encode([]Entity{})
	}))
	defer srv.Close()

	session := &fakeSession{token: "token-1", tenant: testTenant}
	c := New(srv.URL, session, Options{})

	_, err := c.List(context.Background(), "products")
	require.NoError(t, err)

	// Oturum yenilendi: sonraki çağrı yeni değerleri taşımalı.
	session.token = "token-2"
	session.tenant = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

	_, err = c.List(context.Background(), "products")
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Equal(t, testTenant, calls[0].tenant)
	assert.Equal(t, "Bearer token-1", calls[0].auth)
	assert.Equal(t, "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee", calls[1].tenant)
	assert.Equal(t, "Bearer token-2", calls[1].auth)
}

func TestCollectionMerge(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Entity{
			{"id": 1, "name": "Ürün A"},
			{"id": 2, "name": "Ürün B"},
		})
	})
	mux.HandleFunc("POST /api/products", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Entity{"id": 3, "name": "Ürün C"})
	})
	mux.HandleFunc("PUT /api/products/2", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Entity{"id": 2, "name": "Ürün B v2"})
	})
	mux.HandleFunc("DELETE /api/products/1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, &fakeSession{token: "t", tenant: testTenant}, Options{})
	ctx := context.Background()

	// Liste topluca yerleşir.
	rows, err := c.List(ctx, "products")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, c.Cached("products"), 2)

	// Create ekler.
	_, err = c.Create(ctx, "products", map[string]any{"name": "Ürün C"})
	require.NoError(t, err)
	require.Len(t, c.Cached("products"), 3)

	// Update id'ye göre yerinde değiştirir, eklemez.
	_, err = c.Update(ctx, "products", "2", map[string]any{"name": "Ürün B v2"})
	require.NoError(t, err)
	cached := c.Cached("products")
	require.Len(t, cached, 3)
	var found bool
	for _, row := range cached {
		if entityID(row) == "2" {
			found = true
			assert.Equal(t, "Ürün B v2", row["name"])
		}
	}
	require.True(t, found)

	// Delete çıkarır.
	require.NoError(t, c.Delete(ctx, "products", "1"))
	cached = c.Cached("products")
	require.Len(t, cached, 2)
	for _, row := range cached {
		assert.NotEqual(t, "1", entityID(row))
	}
}

func TestSnapshotPersistAndRestore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]Entity{{"id": 1, "name": "Kasa"}})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "state.json")
	session := &fakeSession{token: "t", tenant: testTenant}

	c := New(srv.URL, session, Options{SnapshotPath: path})
	_, err := c.List(context.Background(), "safes")
	require.NoError(t, err)

	// Yeni istemci aynı dosyadan durumu geri yükler, ağa çıkmadan okur.
	restored := New(srv.URL, session, Options{SnapshotPath: path})
	cached := restored.Cached("safes")
	require.Len(t, cached, 1)
	assert.Equal(t, "Kasa", cached[0]["name"])

	// SignOut hem belleği hem dosyayı temizler.
	require.NoError(t, restored.SignOut())
	assert.Empty(t, restored.Cached("safes"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	fresh := New(srv.URL, session, Options{SnapshotPath: path})
	assert.Empty(t, fresh.Cached("safes"))
}

func TestCorruptSnapshotIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{bozuk json"), 0o600))

	c := New("http://localhost:0", &fakeSession{tenant: testTenant}, Options{SnapshotPath: path})
	assert.Empty(t, c.Cached("products"))
}

func TestSessionMissingSignal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "Geçersiz veya süresi dolmuş token",
			"code":  "session_missing",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeSession{token: "eski", tenant: testTenant}, Options{})
	_, err := c.List(context.Background(), "invoices")
	require.ErrorIs(t, err, ErrSessionMissing)
}

func TestPlain401IsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Tenant kimliği çözümlenemedi"})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeSession{token: "t", tenant: testTenant}, Options{})
	_, err := c.List(context.Background(), "invoices")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrSessionMissing))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestAPIErrorCarriesStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "name boş olamaz"})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeSession{token: "t", tenant: testTenant}, Options{})
	_, err := c.Create(context.Background(), "current-accounts", map[string]any{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "name boş olamaz", apiErr.Message)
}

// Package client, muhasebe API'si için durum önbellekli bir Go SDK'sıdır.
// Her entity koleksiyonunun yerel bir kopyasını tutar, başarılı çağrıların
// sonuçlarını id'ye göre birleştirir ve koleksiyonları bir JSON dosyasına
// yazarak oturumlar arası geri yükler.
package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"
)

var (
	// ErrNoTenant: oturumda tenant yoksa ağ çağrısı hiç yapılmaz.
	ErrNoTenant = errors.New("client: oturumda tenant yok, istek atlandı")

	// ErrSessionMissing: sunucu 401 ile oturumun kayıp olduğunu bildirdi.
	// SDK kendisi yenileme veya yönlendirme yapmaz, çağıran karar verir.
	ErrSessionMissing = errors.New("client: oturum bulunamadı")
)

// SessionProvider her çağrıdan hemen önce güncel kimlik bilgilerini verir.
// Token veya tenant oturum yenilenince değişebileceği için SDK bunları
// saklamaz, her seferinde yeniden sorar.
type SessionProvider interface {
	Token() string
	TenantID() string
}

// Options isteğe bağlı kurulum ayarları.
type Options struct {
	// SnapshotPath boş değilse koleksiyonlar bu dosyada kalıcı tutulur.
	SnapshotPath string
	// HTTPClient nil ise makul timeout'lu varsayılan kullanılır.
	HTTPClient *http.Client
}

// Entity sunucudan dönen tek bir satır. Tüm entity tipleri "id" alanı taşır.
type Entity map[string]any

type snapshot struct {
	SavedAt     time.Time           `json:"saved_at"`
	Collections map[string][]Entity `json:"collections"`
}

// Client tek bir oturuma bağlı durum önbelleği. Paket seviyesinde tekil
// örnek yoktur, her oturum kendi Client'ını kurar.
type Client struct {
	baseURL      string
	session      SessionProvider
	httpClient   *http.Client
	snapshotPath string

	mu          sync.RWMutex
	collections map[string][]Entity
}

// New bir Client kurar ve varsa anlık görüntüyü diskten geri yükler.
// Bozuk veya eksik dosya hata değildir, boş durumla başlanır.
func New(baseURL string, session SessionProvider, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	c := &Client{
		baseURL:      baseURL,
		session:      session,
		httpClient:   httpClient,
		snapshotPath: opts.SnapshotPath,
		collections:  make(map[string][]Entity),
	}
	c.restore()
	return c
}

// Cached bir koleksiyonun yerel kopyasını döner. Ağa çıkmaz.
func (c *Client) Cached(entity string) []Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entity, len(c.collections[entity]))
	copy(out, c.collections[entity])
	return out
}

// SignOut yerel durumu ve varsa anlık görüntü dosyasını temizler.
func (c *Client) SignOut() error {
	c.mu.Lock()
	c.collections = make(map[string][]Entity)
	c.mu.Unlock()

	if c.snapshotPath == "" {
		return nil
	}
	if err := os.Remove(c.snapshotPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *Client) restore() {
	if c.snapshotPath == "" {
		return
	}
	data, err := os.ReadFile(c.snapshotPath)
	if err != nil {
		return
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return
	}
	if snap.Collections != nil {
		c.collections = snap.Collections
	}
}

// persist kilit altında çağrılır.
func (c *Client) persist() {
	if c.snapshotPath == "" {
		return
	}
	snap := snapshot{SavedAt: time.Now(), Collections: c.collections}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = os.WriteFile(c.snapshotPath, data, 0o600)
}

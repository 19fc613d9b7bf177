package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// APIError sunucudan dönen hata gövdesi.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Code       string `json:"code"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
}

// List koleksiyonu sunucudan çeker ve yerel kopyayı topluca değiştirir.
func (c *Client) List(ctx context.Context, entity string) ([]Entity, error) {
	var rows []Entity
	if err := c.do(ctx, http.MethodGet, "/api/"+entity, nil, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []Entity{}
	}

	c.mu.Lock()
	c.collections[entity] = rows
	c.persist()
	c.mu.Unlock()

	return rows, nil
}

// Get tek satır çeker ve yerel kopyadaki karşılığını günceller.
func (c *Client) Get(ctx context.Context, entity, id string) (Entity, error) {
	var row Entity
	if err := c.do(ctx, http.MethodGet, "/api/"+entity+"/"+id, nil, &row); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.mergeLocked(entity, row)
	c.persist()
	c.mu.Unlock()

	return row, nil
}

// Create satırı sunucuda oluşturur, dönen satırı koleksiyona ekler.
func (c *Client) Create(ctx context.Context, entity string, payload any) (Entity, error) {
	var row Entity
	if err := c.do(ctx, http.MethodPost, "/api/"+entity, payload, &row); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.mergeLocked(entity, row)
	c.persist()
	c.mu.Unlock()

	return row, nil
}

// Update satırı sunucuda günceller, yerel kopyada id'ye göre değiştirir.
func (c *Client) Update(ctx context.Context, entity, id string, payload any) (Entity, error) {
	var row Entity
	if err := c.do(ctx, http.MethodPut, "/api/"+entity+"/"+id, payload, &row); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.mergeLocked(entity, row)
	c.persist()
	c.mu.Unlock()

	return row, nil
}

// Delete satırı sunucudan siler ve yerel kopyadan çıkarır.
func (c *Client) Delete(ctx context.Context, entity, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/"+entity+"/"+id, nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	c.removeLocked(entity, id)
	c.persist()
	c.mu.Unlock()

	return nil
}

// do ortak istek yolu. Tenant ve token her çağrıda oturumdan yeniden
// alınır, eski değerler asla tekrar kullanılmaz.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	tenantID := c.session.TenantID()
	if tenantID == "" {
		return ErrNoTenant
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", tenantID)
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(data, apiErr)
		if resp.StatusCode == http.StatusUnauthorized && apiErr.Code == "session_missing" {
			// Oturum yenileme dışarıdaki mekanizmanın işi, burada
			// yeniden deneme veya yönlendirme yapılmaz.
			return ErrSessionMissing
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// entityID JSON'dan gelen id'yi karşılaştırılabilir metne çevirir.
// Sayılar float64 olarak çözülür, "5.0" yerine "5" üretmek gerekir.
func entityID(e Entity) string {
	switch v := e["id"].(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (c *Client) mergeLocked(entity string, row Entity) {
	id := entityID(row)
	if id == "" {
		return
	}
	rows := c.collections[entity]
	for i := range rows {
		if entityID(rows[i]) == id {
			rows[i] = row
			return
		}
	}
	c.collections[entity] = append(rows, row)
}

func (c *Client) removeLocked(entity, id string) {
	rows := c.collections[entity]
	for i := range rows {
		if entityID(rows[i]) == strings.TrimSpace(id) {
			c.collections[entity] = append(rows[:i], rows[i+1:]...)
			return
		}
	}
}

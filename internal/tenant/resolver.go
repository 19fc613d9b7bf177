package tenant

import (
	"regexp"

	"muhasebe-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const CtxTenantIDKey = "tenant_id"

const HeaderTenantID = "x-tenant-id"

// Tenant kimliği her zaman UUID biçiminde olmalı. Biçime uymayan bir
// değer asla filtre olarak kullanılmaz; header sahteciliğine ve bozuk
// claim'lere karşı istek 400 ile kapanır.
var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func ValidID(id string) bool {
	return uuidPattern.MatchString(id)
}

// Evidence: bir isteğin tenant çözümlemesinde kullanılabilecek kanıtlar.
type Evidence struct {
	Claims *auth.JWTCustomClaims // doğrulanmış oturum claim'leri (yoksa nil)
	Header string                // x-tenant-id header değeri
}

// Strategy: tek bir kaynaktan tenant kimliği önerir. İkinci dönüş
// değeri kaynağın bir öneri üretip üretmediğini söyler; geçerlilik
// kontrolü Resolve'a aittir.
type Strategy func(Evidence) (string, bool)

func fromSessionClaim(e Evidence) (string, bool) {
	if e.Claims == nil || e.Claims.TenantID == "" {
		return "", false
	}
	return e.Claims.TenantID, true
}

func fromMetadata(e Evidence) (string, bool) {
	if e.Claims == nil {
		return "", false
	}
	v, ok := e.Claims.UserMetadata["tenant_id"]
	return v, ok && v != ""
}

// Eski token'lar camelCase anahtar kullanıyordu; geriye dönük uyumluluk
func fromLegacyMetadata(e Evidence) (string, bool) {
	if e.Claims == nil {
		return "", false
	}
	v, ok := e.Claims.UserMetadata["tenantId"]
	return v, ok && v != ""
}

// Header yalnızca oturumsuz bağlamlar için geçerli bir kaynaktır;
// oturum varken sıralama gereği zaten claim'ler kazanır.
func fromHeader(e Evidence) (string, bool) {
	if e.Header == "" {
		return "", false
	}
	return e.Header, true
}

// Çözümleme sırası sabittir ve korunmalıdır:
// oturum claim'i > metadata tenant_id > eski tenantId > x-tenant-id header'ı.
var strategies = []Strategy{
	fromSessionClaim,
	fromMetadata,
	fromLegacyMetadata,
	fromHeader,
}

// Resolve: sıradaki ilk öneriyi alır ve UUID biçimini doğrular.
// Öneri yoksa 401, öneri bozuksa 400 döner; her iki durumda da veri
// erişimi gerçekleşmeden istek kapanır.
func Resolve(e Evidence) (string, error) {
	for _, s := range strategies {
		id, ok := s(e)
		if !ok {
			continue
		}
		if !ValidID(id) {
			return "", fiber.NewError(fiber.StatusBadRequest, "Geçersiz tenant kimliği")
		}
		return id, nil
	}
	return "", fiber.NewError(fiber.StatusUnauthorized, "Tenant kimliği çözümlenemedi")
}

// Middleware: tenant kimliğini çözer ve context'e koyar. Çözümleme
// başarısızsa hiçbir handler çalışmaz.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := Resolve(Evidence{
			Claims: auth.SessionClaims(c),
			Header: c.Get(HeaderTenantID),
		})
		if err != nil {
			return err
		}

		c.Locals(CtxTenantIDKey, id)
		return c.Next()
	}
}

// FromCtx: middleware'in çözdüğü tenant kimliğini döndürür.
func FromCtx(c *fiber.Ctx) (string, error) {
	id, ok := c.Locals(CtxTenantIDKey).(string)
	if !ok || id == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Tenant kimliği çözümlenemedi")
	}
	return id, nil
}

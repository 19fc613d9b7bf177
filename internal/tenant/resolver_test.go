package tenant

import (
	"testing"

	"muhasebe-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tenantA = "11111111-2222-3333-4444-555555555555"
	tenantB = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
)

func TestValidID(t *testing.T) {
	assert.True(t, ValidID(tenantA))
	assert.True(t, ValidID("AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE"))

	assert.False(t, ValidID(""))
	assert.False(t, ValidID("not-a-uuid"))
	assert.False(t, ValidID("11111111-2222-3333-4444-55555555555"))   // bir hane eksik
	assert.False(t, ValidID("11111111-2222-3333-4444-5555555555555")) // bir hane fazla
	assert.False(t, ValidID("11111111222233334444555555555555"))      // tiresiz
	assert.False(t, ValidID("gggggggg-2222-3333-4444-555555555555"))  // hex dışı
}

func TestResolveFromSessionClaim(t *testing.T) {
	id, err := Resolve(Evidence{
		Claims: &auth.JWTCustomClaims{TenantID: tenantA},
	})
	require.NoError(t, err)
	assert.Equal(t, tenantA, id)
}

func TestResolveFromMetadata(t *testing.T) {
	id, err := Resolve(Evidence{
		Claims: &auth.JWTCustomClaims{
			UserMetadata: map[string]string{"tenant_id": tenantA},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, tenantA, id)
}

func TestResolveFromLegacyMetadata(t *testing.T) {
	id, err := Resolve(Evidence{
		Claims: &auth.JWTCustomClaims{
			UserMetadata: map[string]string{"tenantId": tenantA},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, tenantA, id)
}

func TestResolveFromHeader(t *testing.T) {
	id, err := Resolve(Evidence{Header: tenantA})
	require.NoError(t, err)
	assert.Equal(t, tenantA, id)
}

func TestResolvePrecedence(t *testing.T) {
	// Claim her zaman header'ı ezer.
	id, err := Resolve(Evidence{
		Claims: &auth.JWTCustomClaims{TenantID: tenantA},
		Header: tenantB,
	})
	require.NoError(t, err)
	assert.Equal(t, tenantA, id)

	// Doğrudan claim yoksa metadata, metadata yoksa eski anahtar.
	id, err = Resolve(Evidence{
		Claims: &auth.JWTCustomClaims{
			UserMetadata: map[string]string{
				"tenant_id": tenantA,
				"tenantId":  tenantB,
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, tenantA, id)

	id, err = Resolve(Evidence{
		Claims: &auth.JWTCustomClaims{
			UserMetadata: map[string]string{"tenantId": tenantB},
		},
		Header: tenantA,
	})
	require.NoError(t, err)
	assert.Equal(t, tenantB, id)
}

func TestResolveInvalidFormatIs400(t *testing.T) {
	// Bozuk öneri sonraki kaynağa düşmez, istek 400 ile kapanır.
	_, err := Resolve(Evidence{
		Claims: &auth.JWTCustomClaims{TenantID: "bozuk-kimlik"},
		Header: tenantA,
	})
	require.Error(t, err)
	fe, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusBadRequest, fe.Code)
}

func TestResolveNoEvidenceIs401(t *testing.T) {
	_, err := Resolve(Evidence{})
	require.Error(t, err)
	fe, ok := err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusUnauthorized, fe.Code)

	// Claim var ama tenant taşımıyor: yine 401.
	_, err = Resolve(Evidence{Claims: &auth.JWTCustomClaims{UserID: 7}})
	require.Error(t, err)
	fe, ok = err.(*fiber.Error)
	require.True(t, ok)
	assert.Equal(t, fiber.StatusUnauthorized, fe.Code)
}

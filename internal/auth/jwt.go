package auth

import (
	"time"

	"muhasebe-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// JWTCustomClaims: oturum token'ının içeriği. Yeni token'lar tenant
// kimliğini doğrudan tenant_id claim'inde taşır; eski token'lar için
// user_metadata içindeki tenant_id / tenantId anahtarları da okunur
// (bkz. tenant paketi).
type JWTCustomClaims struct {
	UserID       uint              `json:"user_id"`
	Email        string            `json:"email"`
	TenantID     string            `json:"tenant_id,omitempty"`
	UserMetadata map[string]string `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, user *models.User) (string, error) {
	claims := &JWTCustomClaims{
		UserID:   user.ID,
		Email:    user.Email,
		TenantID: user.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // 1 gün
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

package auth

import (
	"fmt"
	"strings"

	"muhasebe-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxUserIDKey = "user_id"
	CtxClaimsKey = "session_claims"

	// CodeSessionMissing: 401 cevaplarında istemcinin "oturum kayıp"
	// durumunu mesaj metnine bakmadan ayırt edebilmesi için kod alanı.
	CodeSessionMissing = "session_missing"
)

func sessionMissing(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": msg,
		"code":  CodeSessionMissing,
	})
}

// SessionMiddleware: Authorization header'ı varsa token'ı doğrular ve
// claim'leri context'e koyar. Header yoksa istek claim'siz devam eder;
// tenant çözümlemesi bu durumda x-tenant-id header'ına düşer ya da
// 401 ile kapanır. Geçersiz token her zaman 401'dir, anonim isteğe
// indirgenmez.
func SessionMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return sessionMissing(c, "Authorization formatı 'Bearer <token>' olmalı")
		}

		tokenStr := parts[1]

		token, err := jwt.ParseWithClaims(tokenStr, &JWTCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("geçersiz imzalama yöntemi")
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return sessionMissing(c, "Geçersiz veya süresi dolmuş token")
		}

		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return sessionMissing(c, "Token çözümlenemedi")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxClaimsKey, claims)

		return c.Next()
	}
}

// SessionClaims: middleware'in koyduğu claim'leri döndürür (yoksa nil).
func SessionClaims(c *fiber.Ctx) *JWTCustomClaims {
	claims, _ := c.Locals(CtxClaimsKey).(*JWTCustomClaims)
	return claims
}

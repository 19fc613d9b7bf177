package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit: IP başına istek limiti. Format ulule/limiter'in
// "<limit>-<periyot>" gösterimi, örn "10-M".
func RateLimit(formatted string) fiber.Handler {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		log.Fatalf("Geçersiz rate limit formatı: %s", formatted)
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return func(c *fiber.Ctx) error {
		ctx, err := instance.Get(c.Context(), c.IP())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rate limit kontrolü başarısız")
		}
		if ctx.Reached {
			return fiber.NewError(fiber.StatusTooManyRequests, "Çok fazla istek, lütfen bekleyin")
		}
		return c.Next()
	}
}

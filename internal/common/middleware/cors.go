package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

// CORS разрешает запросы из браузерных редакторов. В production список
// источников задается явно.
func CORS(env string, origins []string) fiber.Handler {
	if env != "production" || len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  []string{"Content-Type"},
		AllowMethods:  []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodDelete},
		ExposeHeaders: []string{"X-Export-ID"},
	})
}

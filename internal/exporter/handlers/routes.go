package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"scene-exporter/internal/exporter/metrics"
)

// Register подключает маршруты экспортера. ready может быть nil.
func Register(app fiber.Router, h *ExportHandler, m *metrics.Metrics, ready Pinger) {
	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", LivenessProbe)
	app.Get("/health/ready", ReadinessProbe(ready))
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	// ============================================================
	// Export Routes
	// ============================================================

	app.Post("/export", h.Export)
	app.Get("/exports", h.List)
	app.Get("/exports/:id", h.Get)
	app.Delete("/exports/:id", h.Delete)
}

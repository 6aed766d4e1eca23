package handlers

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"scene-exporter/internal/exporter/mapper"
	"scene-exporter/internal/exporter/markup"
	"scene-exporter/internal/exporter/metrics"
	"scene-exporter/internal/exporter/models"
	"scene-exporter/internal/exporter/repository"
)

const maxPrecision = 12

// Store - хранилище экспортов (repository.Repository в рабочем сервисе).
type Store interface {
	Save(ctx context.Context, name string, svg []byte, shapes int) (*repository.Export, error)
	Get(ctx context.Context, id string) (*repository.Export, error)
	List(ctx context.Context, limit int) ([]repository.Export, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// ============================================================
// Export Handler
// ============================================================

type ExportHandler struct {
	opts    mapper.Options
	store   Store
	cache   *lru.Cache[string, []byte]
	metrics *metrics.Metrics
}

// NewExportHandler создает обработчик. store может быть nil - тогда
// сохранение и выдача сохраненных экспортов недоступны. При nil m метрики
// пишутся в собственный, нигде не опубликованный реестр.
func NewExportHandler(opts mapper.Options, store Store, cacheSize int, m *metrics.Metrics) (*ExportHandler, error) {
	if cacheSize <= 0 {
		cacheSize = 1
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}

	if m == nil {
		m = metrics.New()
	}
	opts.OnShape = m.ObserveShape
	return &ExportHandler{opts: opts, store: store, cache: cache, metrics: m}, nil
}

// Export конвертирует scene JSON в SVG. ?store=1 сохраняет результат и
// возвращает его id в X-Export-ID; ?precision=N переопределяет точность.
func (h *ExportHandler) Export(c fiber.Ctx) error {
	start := time.Now()
	body := c.Body()
	log.Infof("[EXPORT] Received request: %d bytes", len(body))

	if len(body) == 0 {
		return h.fail(c, start, "invalid", fiber.StatusBadRequest, "body required")
	}

	opts := h.opts
	if raw := c.Query("precision"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 || p > maxPrecision {
			return h.fail(c, start, "invalid", fiber.StatusBadRequest, "precision must be an integer in 1..12")
		}
		opts.Precision = p
	}

	project, err := models.DecodeProject(bytes.NewReader(body))
	if err != nil {
		log.Errorf("[EXPORT] Decode error: %v", err)
		return h.fail(c, start, "invalid", fiber.StatusBadRequest, err.Error())
	}

	root, err := mapper.New(opts).ExportProject(c.Context(), project)
	if err != nil {
		log.Errorf("[EXPORT] Export error: %v", err)
		if errors.Is(err, models.ErrDegeneratePath) || errors.Is(err, models.ErrNonFinite) ||
			errors.Is(err, mapper.ErrTooDeep) {
			return h.fail(c, start, "invalid", fiber.StatusUnprocessableEntity, err.Error())
		}
		return h.fail(c, start, "failed", fiber.StatusInternalServerError, err.Error())
	}

	var buf bytes.Buffer
	if err := markup.Encode(&buf, root); err != nil {
		log.Errorf("[EXPORT] Encode error: %v", err)
		return h.fail(c, start, "failed", fiber.StatusInternalServerError, err.Error())
	}
	svg := buf.Bytes()

	if fiber.Query[bool](c, "store") {
		if h.store == nil {
			return h.fail(c, start, "failed", fiber.StatusServiceUnavailable, "storage disabled")
		}
		saved, err := h.store.Save(c.Context(), project.Name, svg, countShapes(root))
		if err != nil {
			log.Errorf("[EXPORT] Store error: %v", err)
			return h.fail(c, start, "failed", fiber.StatusInternalServerError, "failed to store export")
		}
		h.cache.Add(saved.ID, svg)
		h.metrics.ObserveStored()
		c.Set("X-Export-ID", saved.ID)
		c.Status(fiber.StatusCreated)
		log.Infof("[EXPORT] Stored %s (%d bytes)", saved.ID, len(svg))
	}

	h.metrics.ObserveExport("ok", time.Since(start))
	c.Set("Content-Type", "image/svg+xml")
	return c.Send(svg)
}

// List возвращает метаданные сохраненных экспортов. ?limit=N (по умолчанию 50).
func (h *ExportHandler) List(c fiber.Ctx) error {
	if h.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "storage disabled"})
	}

	items, err := h.store.List(c.Context(), fiber.Query[int](c, "limit"))
	if err != nil {
		log.Errorf("[EXPORTS] List error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list exports"})
	}
	return c.JSON(fiber.Map{"exports": items})
}

// Get отдает сохраненный SVG. Сначала проверяется LRU-кэш.
func (h *ExportHandler) Get(c fiber.Ctx) error {
	if h.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "storage disabled"})
	}

	id := c.Params("id")
	svg, ok := h.cache.Get(id)
	if !ok {
		e, err := h.store.Get(c.Context(), id)
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "export not found"})
		}
		if err != nil {
			log.Errorf("[EXPORTS] Get %s error: %v", id, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load export"})
		}
		svg = e.SVG
		h.cache.Add(id, svg)
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.Send(svg)
}

func (h *ExportHandler) Delete(c fiber.Ctx) error {
	if h.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "storage disabled"})
	}

	id := c.Params("id")
	err := h.store.Delete(c.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "export not found"})
	}
	if err != nil {
		log.Errorf("[EXPORTS] Delete %s error: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete export"})
	}
	h.cache.Remove(id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ExportHandler) fail(c fiber.Ctx, start time.Time, outcome string, status int, msg string) error {
	h.metrics.ObserveExport(outcome, time.Since(start))
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func countShapes(root *markup.Node) int {
	n := 0
	root.Walk(func(node *markup.Node) {
		switch node.Name {
		case "svg", "g", "text":
			return
		}
		n++
	})
	return n
}

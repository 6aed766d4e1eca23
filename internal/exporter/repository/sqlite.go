package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound возвращается, если экспорт с таким id не найден.
var ErrNotFound = errors.New("export not found")

//go:embed migrations/*.sql
var migrations embed.FS

// Export - сохраненный результат экспорта.
type Export struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Shapes    int       `json:"shapes"`
	SizeBytes int       `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
	SVG       []byte    `json:"-"`
}

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Init применяет встроенные миграции.
func (r *Repository) Init(ctx context.Context) error {
	if err := r.runMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Ping проверяет доступность базы.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Save сохраняет SVG и возвращает запись с новым id.
func (r *Repository) Save(ctx context.Context, name string, svg []byte, shapes int) (*Export, error) {
	e := &Export{
		ID:        uuid.NewString(),
		Name:      name,
		Shapes:    shapes,
		SizeBytes: len(svg),
		CreatedAt: r.now().UTC().Truncate(time.Millisecond),
		SVG:       svg,
	}

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO exports (id, name, svg, shapes, size_bytes, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, e.ID, e.Name, e.SVG, e.Shapes, e.SizeBytes, e.CreatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("insert export: %w", err)
	}
	return e, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Export, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, name, svg, shapes, size_bytes, created_at
        FROM exports
        WHERE id = ?
    `, id)

	var e Export
	var created int64
	if err := row.Scan(&e.ID, &e.Name, &e.SVG, &e.Shapes, &e.SizeBytes, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	e.CreatedAt = time.UnixMilli(created).UTC()
	return &e, nil
}

// List возвращает метаданные последних экспортов, новые первыми. SVG не загружается.
func (r *Repository) List(ctx context.Context, limit int) ([]Export, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, shapes, size_bytes, created_at
        FROM exports
        ORDER BY created_at DESC, id
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Export{}
	for rows.Next() {
		var e Export
		var created int64
		if err := rows.Scan(&e.ID, &e.Name, &e.Shapes, &e.SizeBytes, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM exports WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context) error {
	files, err := migrations.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, f := range files {
		data, err := migrations.ReadFile("migrations/" + f.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f.Name(), err)
		}
		if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", f.Name(), err)
		}
	}
	return nil
}

// OpenSQLite открывает sqlite по указанному пути. Драйвер "sqlite3"
// регистрируется импортом github.com/ncruces/go-sqlite3/driver.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

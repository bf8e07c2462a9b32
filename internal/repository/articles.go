package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/entity"
)

// ArticleRepository is the authoritative structured store for canonical
// records. Writes are append-only: repeated writes of the same logical
// record produce duplicate rows. That is documented behavior callers (and
// retry wrappers) must account for, not a bug this layer papers over.
type ArticleRepository interface {
	EnsureSchema(ctx context.Context) error
	Insert(ctx context.Context, recs []entity.Record) (int, error)
	SearchSubstring(ctx context.Context, q string) ([]entity.Record, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) (int64, error)
}

type articleRepository struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

func NewArticleRepository(store *Store, logger *slog.Logger) ArticleRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &articleRepository{db: store.DB, driver: store.Driver, logger: logger}
}

// EnsureSchema idempotently creates the articles table.
func (r *articleRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS articles (
		designation TEXT NOT NULL,
		unit        TEXT,
		quantity    REAL,
		unit_price  REAL NOT NULL,
		total_price REAL
	)`)
	if err != nil {
		r.logger.Error("repository.schema.failed", "error", err)
		return common.WrapError(err, "ensure articles schema")
	}
	return nil
}

func (r *articleRepository) Insert(ctx context.Context, recs []entity.Record) (int, error) {
	start := time.Now()
	if err := r.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	query := r.rebind(`INSERT INTO articles (designation, unit, quantity, unit_price, total_price) VALUES (?, ?, ?, ?, ?)`)
	inserted := 0
	for _, rec := range recs {
		_, err := r.db.ExecContext(ctx, query,
			rec.Designation, rec.Unit, nullable(rec.Quantity), rec.UnitPrice, nullable(rec.TotalPrice))
		if err != nil {
			r.logger.Error("repository.insert.failed",
				"designation", rec.Designation, "error", err)
			return inserted, common.NewAppError("DB_INSERT", "insert article", err)
		}
		inserted++
	}

	r.logger.Info("repository.insert.ok",
		"rows", inserted,
		"elapsed_ms", time.Since(start).Milliseconds())
	return inserted, nil
}

// SearchSubstring returns rows whose designation contains q, in store order.
// Matching is case-insensitive; these hits are treated as exact matches by
// the query engine.
func (r *articleRepository) SearchSubstring(ctx context.Context, q string) ([]entity.Record, error) {
	query := r.rebind(`
	SELECT designation, unit, quantity, unit_price, total_price
	FROM articles
	WHERE lower(designation) LIKE lower(?)`)

	rows, err := r.db.QueryContext(ctx, query, "%"+q+"%")
	if err != nil {
		r.logger.Error("repository.search.failed", "query", q, "error", err)
		return nil, common.NewAppError("DB_QUERY", "search articles", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			r.logger.Warn("repository.search.close_error", "error", cerr)
		}
	}()

	var out []entity.Record
	for rows.Next() {
		var rec entity.Record
		var unit sql.NullString
		var quantity, total sql.NullFloat64
		if err := rows.Scan(&rec.Designation, &unit, &quantity, &rec.UnitPrice, &total); err != nil {
			return nil, common.WrapError(err, "scan article")
		}
		if unit.Valid {
			rec.Unit = unit.String
		}
		if quantity.Valid {
			v := quantity.Float64
			rec.Quantity = &v
		}
		if total.Valid {
			v := total.Float64
			rec.TotalPrice = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *articleRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		if isMissingTable(err) {
			return 0, common.ErrNotFound
		}
		return 0, common.WrapError(err, "count articles")
	}
	return n, nil
}

// Clear empties the articles table. common.ErrNotFound signals the table did
// not exist, which the administrative reset reports rather than fails on.
func (r *articleRepository) Clear(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles`)
	if err != nil {
		if isMissingTable(err) {
			return 0, common.ErrNotFound
		}
		return 0, common.NewAppError("DB_CLEAR", "clear articles", err)
	}
	n, _ := res.RowsAffected()
	r.logger.Info("repository.clear.ok", "rows", n)
	return n, nil
}

// rebind rewrites ? placeholders to $N for the postgres driver.
func (r *articleRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func isMissingTable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "does not exist")
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/legisdesk/bill-registry/internal/models"
)

const selectBills = `SELECT id, title, ministry, status, date_introduced
FROM bills
ORDER BY date_introduced DESC, id DESC`

// PostgresLoader reads the bills table.
type PostgresLoader struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenPostgres connects to dsn and verifies the connection.
func OpenPostgres(ctx context.Context, dsn string, log *slog.Logger) (*PostgresLoader, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresLoader(db, log), nil
}

// NewPostgresLoader wraps an existing handle.
func NewPostgresLoader(db *sql.DB, log *slog.Logger) *PostgresLoader {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PostgresLoader{db: db, log: log}
}

// Close releases the connection pool.
func (l *PostgresLoader) Close() error {
	return l.db.Close()
}

// LoadBills implements BillLoader.
func (l *PostgresLoader) LoadBills(ctx context.Context) ([]models.Bill, error) {
	parsed, err := l.FetchRows(ctx)
	if err != nil {
		return nil, err
	}
	return billsFromRows(parsed, l.log), nil
}

// FetchRows returns the raw rows without validation.
func (l *PostgresLoader) FetchRows(ctx context.Context) ([]models.BillRow, error) {
	rows, err := l.db.QueryContext(ctx, selectBills)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanRows(rows rowScanner) ([]models.BillRow, error) {
	var out []models.BillRow
	for rows.Next() {
		var (
			id                      string
			title, ministry, status sql.NullString
			dateIntroduced          sql.NullString
		)
		if err := rows.Scan(&id, &title, &ministry, &status, &dateIntroduced); err != nil {
			return nil, fmt.Errorf("scan bill row: %w", err)
		}
		out = append(out, models.BillRow{
			ID:             models.FlexibleID(id),
			Title:          title.String,
			Ministry:       ministry.String,
			Status:         status.String,
			DateIntroduced: dateIntroduced.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bill rows: %w", err)
	}
	return out, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"partnersearch/internal/company/models"
	"partnersearch/pkg/platform/tx"
)

const schema = `
CREATE TABLE IF NOT EXISTS cached_companies (
	duns         TEXT PRIMARY KEY,
	company_name TEXT NOT NULL,
	document     JSONB NOT NULL,
	last_updated TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS cached_companies_last_updated_idx
	ON cached_companies (last_updated DESC);
`

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PostgresStore persists company profiles as JSONB documents.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the backing table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure cached_companies schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if sqlTx, ok := tx.From(ctx); ok {
		return sqlTx
	}
	return s.db
}

func (s *PostgresStore) Upsert(ctx context.Context, company models.Company) error {
	doc, err := json.Marshal(company)
	if err != nil {
		return fmt.Errorf("marshal company %s: %w", company.DUNS, err)
	}
	query := `
		INSERT INTO cached_companies (duns, company_name, document, last_updated)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (duns) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			document = EXCLUDED.document,
			last_updated = EXCLUDED.last_updated
	`
	_, err = s.execer(ctx).ExecContext(ctx, query, company.DUNS, company.CompanyName, doc, company.LastUpdated.UTC())
	if err != nil {
		return fmt.Errorf("upsert company %s: %w", company.DUNS, err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]models.Company, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT document FROM cached_companies ORDER BY last_updated DESC, duns ASC LIMIT $1`,
		normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list recent companies: %w", err)
	}
	defer rows.Close()

	out := make([]models.Company, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		var c models.Company
		if err := json.Unmarshal(doc, &c); err != nil {
			return nil, fmt.Errorf("decode company: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return out, nil
}

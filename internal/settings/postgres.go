package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultDocumentID = "default"

// PostgresPersister stores the settings document in a JSONB column so a
// fleet of displays can share one configuration.
type PostgresPersister struct {
	pool *pgxpool.Pool
	id   string
}

// NewPostgresPersister creates a persister for the document named id
// (the default document when id is empty).
func NewPostgresPersister(pool *pgxpool.Pool, id string) *PostgresPersister {
	if id == "" {
		id = defaultDocumentID
	}
	return &PostgresPersister{pool: pool, id: id}
}

// EnsureSchema creates the settings table if it does not exist.
func (p *PostgresPersister) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS signage_settings (
			id         TEXT PRIMARY KEY,
			document   JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := p.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("postgres: failed to create settings table: %w", err)
	}
	return nil
}

func (p *PostgresPersister) Load(ctx context.Context) (Settings, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx, `SELECT document FROM signage_settings WHERE id = $1`, p.id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settings{}, ErrNoSettings
		}
		return Settings{}, fmt.Errorf("postgres: failed to load settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(doc, &s); err != nil {
		return Settings{}, fmt.Errorf("postgres: failed to decode settings: %w", err)
	}
	return s, nil
}

func (p *PostgresPersister) Save(ctx context.Context, s Settings) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO signage_settings (id, document, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = now()
	`
	if _, err := p.pool.Exec(ctx, query, p.id, doc); err != nil {
		return fmt.Errorf("postgres: failed to save settings: %w", err)
	}
	return nil
}

// Health checks database connectivity
func (p *PostgresPersister) Health(ctx context.Context) error {
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

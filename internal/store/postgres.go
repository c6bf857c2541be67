package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jreis/shortener/internal/shortener"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS short_links (
	code         TEXT PRIMARY KEY,
	original_url TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	expires_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS click_events (
	id         UUID PRIMARY KEY,
	code       TEXT NOT NULL,
	ts         TIMESTAMPTZ NOT NULL,
	referrer   TEXT NOT NULL DEFAULT '',
	ip         TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	location   TEXT NOT NULL DEFAULT 'unknown'
);

CREATE INDEX IF NOT EXISTS click_events_code_ts_idx ON click_events (code, ts);
`

// PostgresStore is a PostgreSQL implementation of shortener.Repository
// and shortener.ClickStore. The primary key on short_links.code is the
// sole arbiter of shortcode uniqueness under concurrent creation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the schema if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)

	return err
}

func (p *PostgresStore) Create(ctx context.Context, link *shortener.ShortLink) error {
	query := `
		INSERT INTO short_links (code, original_url, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := p.pool.Exec(ctx, query,
		link.Code,
		link.OriginalURL,
		link.CreatedAt,
		link.ExpiresAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return shortener.ErrCodeInUse
		}

		return err
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code string) (*shortener.ShortLink, error) {
	query := `
		SELECT code, original_url, created_at, expires_at
		FROM short_links
		WHERE code = $1
	`

	var link shortener.ShortLink

	err := p.pool.QueryRow(ctx, query, code).Scan(
		&link.Code,
		&link.OriginalURL,
		&link.CreatedAt,
		&link.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return &link, nil
}

func (p *PostgresStore) Exists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM short_links WHERE code = $1)`

	var exists bool

	if err := p.pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (p *PostgresStore) Record(ctx context.Context, click *shortener.ClickEvent) error {
	query := `
		INSERT INTO click_events (id, code, ts, referrer, ip, user_agent, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := p.pool.Exec(ctx, query,
		click.ID,
		click.Code,
		click.Timestamp,
		click.Referrer,
		click.IP,
		click.UserAgent,
		click.Location,
	)

	return err
}

func (p *PostgresStore) ListByCode(ctx context.Context, code string) ([]shortener.ClickEvent, error) {
	query := `
		SELECT id, code, ts, referrer, ip, user_agent, location
		FROM click_events
		WHERE code = $1
		ORDER BY ts ASC
	`

	rows, err := p.pool.Query(ctx, query, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clicks []shortener.ClickEvent

	for rows.Next() {
		var click shortener.ClickEvent

		err := rows.Scan(
			&click.ID,
			&click.Code,
			&click.Timestamp,
			&click.Referrer,
			&click.IP,
			&click.UserAgent,
			&click.Location,
		)
		if err != nil {
			return nil, err
		}

		clicks = append(clicks, click)
	}

	return clicks, rows.Err()
}

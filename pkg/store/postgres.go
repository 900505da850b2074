package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS configs (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	format     TEXT NOT NULL,
	body       TEXT NOT NULL,
	version    BIGINT NOT NULL,
	deleted    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS configs_name ON configs (name);
`

// Postgres stores records through a pgx connection pool.
type Postgres struct {
	db      *pgxpool.Pool
	now     func() time.Time
	timeout time.Duration
}

// OpenPostgres connects to url and migrates the schema.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("store: postgres url required")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: migrate postgres: %w", err)
	}
	return NewPostgres(pool), nil
}

// NewPostgres wraps an existing pool. The schema must already exist.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{db: pool, now: time.Now, timeout: 4 * time.Second}
}

const postgresColumns = `id, name, type, format, body, version, deleted, created_at, updated_at`

func (p *Postgres) Get(ctx context.Context, id string) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	rec, err := scanPostgres(p.db.QueryRow(ctx, `SELECT `+postgresColumns+` FROM configs WHERE id = $1`, strings.TrimSpace(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, notFound(id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: get %s: %w", id, err)
	}
	return rec, nil
}

func (p *Postgres) Create(ctx context.Context, rec Record) (Record, error) {
	rec, err := prepare(rec, p.now())
	if err != nil {
		return Record{}, err
	}
	rec.ID = NewID()
	rec.Version = 1
	rec.Deleted = false
	rec.Created = rec.Updated

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	_, err = p.db.Exec(ctx, `
		INSERT INTO configs (`+postgresColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7, $8)
	`, rec.ID, rec.Name, rec.Type, rec.Format, rec.Body, rec.Version, rec.Created, rec.Updated)
	if err != nil {
		return Record{}, fmt.Errorf("store: insert: %w", err)
	}
	return rec, nil
}

func (p *Postgres) Update(ctx context.Context, rec Record) (Record, error) {
	rec, err := prepare(rec, p.now())
	if err != nil {
		return Record{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	updated, err := scanPostgres(p.db.QueryRow(ctx, `
		UPDATE configs
		SET name = $1, type = $2, format = $3, body = $4, version = version + 1, updated_at = $5
		WHERE id = $6 AND NOT deleted AND ($7 = 0 OR version = $7)
		RETURNING `+postgresColumns,
		rec.Name, rec.Type, rec.Format, rec.Body, rec.Updated, rec.ID, rec.Version))
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := p.Get(ctx, rec.ID)
		if getErr != nil {
			return Record{}, getErr
		}
		if current.Deleted {
			return Record{}, deleted(rec.ID)
		}
		return Record{}, versionMismatch(rec.ID, rec.Version, current.Version)
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: update %s: %w", rec.ID, err)
	}
	return updated, nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	tag, err := p.db.Exec(ctx, `
		UPDATE configs SET deleted = TRUE, version = version + 1, updated_at = $1
		WHERE id = $2 AND NOT deleted
	`, p.now().UTC(), id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := p.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) Search(ctx context.Context, q Query) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if !q.IncludeDeleted {
		where = append(where, "NOT deleted")
	}
	if q.Type != "" {
		args = append(args, q.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if pattern := namePattern(q.Name); pattern != "" {
		args = append(args, pattern)
		where = append(where, fmt.Sprintf("strpos(lower(name), $%d) > 0", len(args)))
	}
	stmt := `SELECT ` + postgresColumns + ` FROM configs`
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY name, id"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		stmt += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	rows, err := p.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanPostgres(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	if p != nil && p.db != nil {
		p.db.Close()
	}
	return nil
}

func scanPostgres(row pgx.Row) (Record, error) {
	var rec Record
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Type, &rec.Format, &rec.Body, &rec.Version, &rec.Deleted, &rec.Created, &rec.Updated); err != nil {
		return Record{}, err
	}
	rec.Created = rec.Created.UTC()
	rec.Updated = rec.Updated.UTC()
	return rec, nil
}

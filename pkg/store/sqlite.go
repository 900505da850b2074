package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS configs (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	format     TEXT NOT NULL,
	body       TEXT NOT NULL,
	version    INTEGER NOT NULL,
	deleted    INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS configs_name ON configs (name);
`

// SQLite stores records in a SQLite database through modernc.org/sqlite.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and migrates) the database at path. ":memory:" keeps a
// single connection so every query sees the same database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store: sqlite path required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate sqlite: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

const sqliteColumns = `id, name, type, format, body, version, deleted, created_at, updated_at`

func (s *SQLite) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM configs WHERE id = ?`, strings.TrimSpace(id))
	rec, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, notFound(id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: get %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLite) Create(ctx context.Context, rec Record) (Record, error) {
	rec, err := prepare(rec, s.now())
	if err != nil {
		return Record{}, err
	}
	rec.ID = NewID()
	rec.Version = 1
	rec.Deleted = false
	rec.Created = rec.Updated

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO configs (`+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`, rec.ID, rec.Name, rec.Type, rec.Format, rec.Body, rec.Version, rec.Created.UnixNano(), rec.Updated.UnixNano())
	if err != nil {
		return Record{}, fmt.Errorf("store: insert: %w", err)
	}
	return rec, nil
}

func (s *SQLite) Update(ctx context.Context, rec Record) (Record, error) {
	rec, err := prepare(rec, s.now())
	if err != nil {
		return Record{}, err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE configs
		SET name = ?, type = ?, format = ?, body = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND deleted = 0 AND (? = 0 OR version = ?)
	`, rec.Name, rec.Type, rec.Format, rec.Body, rec.Updated.UnixNano(), rec.ID, rec.Version, rec.Version)
	if err != nil {
		return Record{}, fmt.Errorf("store: update %s: %w", rec.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Record{}, s.explainMiss(ctx, rec)
	}
	return s.Get(ctx, rec.ID)
}

func (s *SQLite) explainMiss(ctx context.Context, rec Record) error {
	current, err := s.Get(ctx, rec.ID)
	if err != nil {
		return err
	}
	if current.Deleted {
		return deleted(rec.ID)
	}
	return versionMismatch(rec.ID, rec.Version, current.Version)
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE configs SET deleted = 1, version = version + 1, updated_at = ?
		WHERE id = ? AND deleted = 0
	`, s.now().UTC().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Search(ctx context.Context, q Query) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if !q.IncludeDeleted {
		where = append(where, "deleted = 0")
	}
	if q.Type != "" {
		where = append(where, "type = ?")
		args = append(args, q.Type)
	}
	if pattern := namePattern(q.Name); pattern != "" {
		where = append(where, "instr(lower(name), ?) > 0")
		args = append(args, pattern)
	}
	stmt := `SELECT ` + sqliteColumns + ` FROM configs`
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY name, id"
	if q.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (Record, error) {
	var (
		rec              Record
		isDeleted        int64
		created, updated int64
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Type, &rec.Format, &rec.Body, &rec.Version, &isDeleted, &created, &updated); err != nil {
		return Record{}, err
	}
	rec.Deleted = isDeleted != 0
	rec.Created = time.Unix(0, created).UTC()
	rec.Updated = time.Unix(0, updated).UTC()
	return rec, nil
}

// Package store persists configuration documents for the configuration
// service. Records are opaque bodies (JSON or XML text) tagged with a name,
// a type and a version; deletes are soft so deleted documents can still be
// shown read-only.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/goliatone/go-viewdef/pkg/faults"
)

// Body formats.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

var (
	ErrNotFound = errors.New("store: config not found")
	ErrDeleted  = errors.New("store: config deleted")
	ErrVersion  = errors.New("store: version mismatch")
)

// Record is one stored configuration.
type Record struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    string    `json:"type"`
	Format  string    `json:"format"`
	Body    string    `json:"body"`
	Version int64     `json:"version"`
	Deleted bool      `json:"deleted,omitempty"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// Query filters Search. Name matches case-insensitively as a substring; a
// '*' anywhere in it is ignored. Type matches exactly when set.
type Query struct {
	Name           string
	Type           string
	Limit          int
	IncludeDeleted bool
}

// Store is implemented by Memory, SQLite and Postgres.
type Store interface {
	Get(ctx context.Context, id string) (Record, error)
	// Create assigns a new id and version 1.
	Create(ctx context.Context, rec Record) (Record, error)
	// Update replaces name, type, format and body. A non-zero rec.Version
	// must equal the stored version.
	Update(ctx context.Context, rec Record) (Record, error)
	// Delete marks the record deleted. Deleting twice is not an error.
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NewID returns a new ULID string.
func NewID() string {
	return ulid.Make().String()
}

func notFound(id string) error {
	return faults.New(faults.KindNotFound, fmt.Errorf("%w: %s", ErrNotFound, id))
}

func deleted(id string) error {
	return faults.New(faults.KindConflict, fmt.Errorf("%w: %s", ErrDeleted, id))
}

func versionMismatch(id string, want, got int64) error {
	return faults.New(faults.KindConflict, fmt.Errorf("%w: %s at version %d, got %d", ErrVersion, id, got, want))
}

func prepare(rec Record, now time.Time) (Record, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Type = strings.TrimSpace(rec.Type)
	if rec.Name == "" {
		return rec, faults.Newf(faults.KindValidation, "store: name required")
	}
	if rec.Type == "" {
		return rec, faults.Newf(faults.KindValidation, "store: type required")
	}
	switch rec.Format {
	case "":
		rec.Format = DetectFormat(rec.Body)
	case FormatJSON, FormatXML:
	default:
		return rec, faults.Newf(faults.KindValidation, "store: unknown format %q", rec.Format)
	}
	rec.Updated = now.UTC().Truncate(time.Microsecond)
	return rec, nil
}

// DetectFormat returns FormatXML for bodies starting with '<' and FormatJSON
// otherwise.
func DetectFormat(body string) string {
	if strings.HasPrefix(strings.TrimSpace(body), "<") {
		return FormatXML
	}
	return FormatJSON
}

func namePattern(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.ReplaceAll(name, "*", "")))
}

func matches(rec Record, q Query) bool {
	if rec.Deleted && !q.IncludeDeleted {
		return false
	}
	if q.Type != "" && rec.Type != q.Type {
		return false
	}
	pattern := namePattern(q.Name)
	return pattern == "" || strings.Contains(strings.ToLower(rec.Name), pattern)
}

func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].ID < records[j].ID
	})
}

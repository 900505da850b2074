package store

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{records: map[string]Record{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[strings.TrimSpace(id)]
	if !ok {
		return Record{}, notFound(id)
	}
	return rec, nil
}

func (m *Memory) Create(_ context.Context, rec Record) (Record, error) {
	rec, err := prepare(rec, m.now())
	if err != nil {
		return Record{}, err
	}
	rec.ID = NewID()
	rec.Version = 1
	rec.Deleted = false
	rec.Created = rec.Updated

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *Memory) Update(_ context.Context, rec Record) (Record, error) {
	rec, err := prepare(rec, m.now())
	if err != nil {
		return Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.records[rec.ID]
	switch {
	case !ok:
		return Record{}, notFound(rec.ID)
	case current.Deleted:
		return Record{}, deleted(rec.ID)
	case rec.Version != 0 && rec.Version != current.Version:
		return Record{}, versionMismatch(rec.ID, rec.Version, current.Version)
	}
	current.Name = rec.Name
	current.Type = rec.Type
	current.Format = rec.Format
	current.Body = rec.Body
	current.Version++
	current.Updated = rec.Updated
	m.records[rec.ID] = current
	return current, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return notFound(id)
	}
	if rec.Deleted {
		return nil
	}
	rec.Deleted = true
	rec.Version++
	rec.Updated = m.now().UTC().Truncate(time.Microsecond)
	m.records[id] = rec
	return nil
}

func (m *Memory) Search(_ context.Context, q Query) ([]Record, error) {
	m.mu.RLock()
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		if matches(rec, q) {
			out = append(out, rec)
		}
	}
	m.mu.RUnlock()

	sortRecords(out)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }

// Package history keeps short "recently viewed" lists, most recent first.
package history

import (
	"encoding/json"
	"strings"
	"sync"
)

// DefaultLimit caps each list.
const DefaultLimit = 10

// ConfigsRecent is the list used by the configuration pages.
const ConfigsRecent = "history.configs.recent"

// Entry is one visited item.
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// List holds named history lists.
type List struct {
	mu    sync.RWMutex
	limit int
	items map[string][]Entry
}

// New returns a List capped at limit entries per item; non-positive limits
// fall back to DefaultLimit.
func New(limit int) *List {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &List{limit: limit, items: make(map[string][]Entry)}
}

// Put records e under item. An existing entry with the same name moves to the
// front and takes the new value.
func (l *List) Put(item string, e Entry) {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.items[item]
	next := make([]Entry, 0, len(current)+1)
	next = append(next, e)
	for _, existing := range current {
		if existing.Name == e.Name {
			continue
		}
		next = append(next, existing)
	}
	if len(next) > l.limit {
		next = next[:l.limit]
	}
	l.items[item] = next
}

// Get returns a copy of the entries under item.
func (l *List) Get(item string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.items[item]...)
}

// MarshalJSON encodes every list.
func (l *List) MarshalJSON() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return json.Marshal(l.items)
}

// UnmarshalJSON restores lists, applying the limit.
func (l *List) UnmarshalJSON(data []byte) error {
	var items map[string][]Entry
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.limit <= 0 {
		l.limit = DefaultLimit
	}
	l.items = make(map[string][]Entry, len(items))
	for key, entries := range items {
		if len(entries) > l.limit {
			entries = entries[:l.limit]
		}
		l.items[key] = entries
	}
	return nil
}

// Package message keeps the transient and persistent messages shown in page
// locations, and the single modal dialog a page may display.
package message

import (
	"sort"
	"sync"
	"time"
)

// Standard texts.
const (
	TextLoading      = "loading..."
	TextStillLoading = "still loading..."
	TextSaving       = "saving..."
	TextSaved        = "saved"
)

// Stage is one step of a staged message: Text becomes visible once After has
// elapsed since the message was shown.
type Stage struct {
	After time.Duration
	Text  string
}

// View is the resolved state of a location.
type View struct {
	Location   string `json:"location"`
	Text       string `json:"text,omitempty"`
	HTML       string `json:"html,omitempty"`
	Persistent bool   `json:"persistent,omitempty"`
}

type entry struct {
	stages     []Stage
	html       string
	persistent bool
	shown      time.Time
}

// Center holds messages keyed by location.
type Center struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]*entry
	dialog  *Dialog
}

// Option configures a Center.
type Option func(*Center)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Center) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCenter constructs an empty Center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Show replaces the message at location with the given stages. Stages are
// ordered by their delay.
func (c *Center) Show(location string, stages ...Stage) {
	if len(stages) == 0 {
		c.Destroy(location)
		return
	}
	ordered := append([]Stage(nil), stages...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].After < ordered[j].After })

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[location] = &entry{stages: ordered, shown: c.now()}
}

// Text shows a single transient text.
func (c *Center) Text(location, text string) {
	c.Show(location, Stage{Text: text})
}

// Loading shows "loading..." and switches to "still loading..." after slow.
func (c *Center) Loading(location string, slow time.Duration) {
	c.Show(location, Stage{Text: TextLoading}, Stage{After: slow, Text: TextStillLoading})
}

// Warn shows a persistent banner. The markup is sanitised.
func (c *Center) Warn(location, html string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[location] = &entry{html: Sanitize(html), persistent: true, shown: c.now()}
}

// Destroy clears the message at location. Persistent banners are kept unless
// force is set through Clear.
func (c *Center) Destroy(location string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[location]; ok && !e.persistent {
		delete(c.entries, location)
	}
}

// Clear removes any message at location, persistent or not.
func (c *Center) Clear(location string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, location)
}

// Current resolves the message visible at location now.
func (c *Center) Current(location string) (View, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[location]
	if !ok {
		return View{}, false
	}
	view := View{Location: location, HTML: e.html, Persistent: e.persistent}
	elapsed := c.now().Sub(e.shown)
	for _, stage := range e.stages {
		if stage.After > elapsed {
			break
		}
		view.Text = stage.Text
	}
	return view, true
}

// Locations lists locations that currently hold a message.
func (c *Center) Locations() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.entries))
	for loc := range c.entries {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

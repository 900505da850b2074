package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goliatone/go-viewdef/pkg/document"
)

// Top level block ids.
const (
	IDRoot        = "view_def"
	IDIdentity    = "view_def_identity"
	IDResultModel = "view_def_result_model"
	IDExecution   = "view_def_execution"
	IDTabs        = "view_def_tabs"
	IDSets        = "view_def_sets"
)

// DefaultIDPrefix prefixes generated element ids.
const DefaultIDPrefix = "view_def_"

// ValidateFunc checks a compacted document before it is encoded.
type ValidateFunc func(ctx context.Context, doc *document.Document) error

// Option configures Build.
type Option func(*Form)

// WithValidator runs fn on submit.
func WithValidator(fn ValidateFunc) Option {
	return func(f *Form) {
		f.validate = fn
	}
}

// WithLogger sets the logger used for interaction traces.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithIDPrefix overrides the generated id prefix.
func WithIDPrefix(prefix string) Option {
	return func(f *Form) {
		if strings.TrimSpace(prefix) != "" {
			f.prefix = prefix
		}
	}
}

type setView struct {
	holder  *Block
	header  *Block
	tab     *Block
	columns map[int]*columnView
}

type columnView struct {
	block        *Block
	requirements *Block
	items        map[int]*Block
}

// Form is a live editing surface over one document. It is owned by a single
// editing session and is not safe for concurrent use.
type Form struct {
	doc      *document.Document
	root     *Block
	tabsRoot *Block
	setsRoot *Block
	mounted  map[string]*Block
	tabs     *Tabs
	sets     map[int]*setView
	seq      int
	prefix   string
	validate ValidateFunc
	logger   *slog.Logger
}

// Submission is the outcome of Submit.
type Submission struct {
	Document *document.Document
	JSON     []byte
}

// Document returns the live, possibly sparse, document.
func (f *Form) Document() *document.Document { return f.doc }

// Root returns the root block.
func (f *Form) Root() *Block { return f.root }

// Block returns a mounted block.
func (f *Form) Block(id string) (*Block, bool) {
	b, ok := f.mounted[id]
	return b, ok
}

// Mounted reports the number of mounted blocks.
func (f *Form) Mounted() int { return len(f.mounted) }

// Tabs exposes the tab state.
func (f *Form) Tabs() *Tabs { return f.tabs }

// SetBlock returns the sub-tree of calculation set set.
func (f *Form) SetBlock(set int) (*Block, bool) {
	sv, ok := f.sets[set]
	if !ok {
		return nil, false
	}
	return sv.holder, true
}

// TabBlock returns the tab of calculation set set.
func (f *Form) TabBlock(set int) (*Block, bool) {
	sv, ok := f.sets[set]
	if !ok {
		return nil, false
	}
	return sv.tab, true
}

// ColumnBlock returns the block of column col in set set.
func (f *Form) ColumnBlock(set, col int) (*Block, bool) {
	cv, ok := f.column(set, col)
	if !ok {
		return nil, false
	}
	return cv.block, true
}

// RequirementBlock returns the block of requirement req.
func (f *Form) RequirementBlock(set, col, req int) (*Block, bool) {
	cv, ok := f.column(set, col)
	if !ok {
		return nil, false
	}
	b, ok := cv.items[req]
	return b, ok
}

// Values returns the current value of every mounted field keyed by submission
// name, the same map a browser would post.
func (f *Form) Values() map[string]string {
	out := make(map[string]string)
	f.root.Walk(func(b *Block) bool {
		for _, field := range b.Fields {
			out[field.Name] = field.Value
		}
		return true
	})
	return out
}

// Dispatch routes ev to the handler of the block it addresses.
func (f *Form) Dispatch(ev Event) ([]Patch, error) {
	b, ok := f.mounted[ev.Block]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBlock, ev.Block)
	}
	h, ok := b.handlers[ev.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownAction, ev.Action, ev.Block)
	}
	patches, err := h(ev)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("editor event", "block", ev.Block, "action", ev.Action, "patches", len(patches))
	return patches, nil
}

// Submit applies posted values to the document, compacts it, validates the
// result and encodes it. Keys starting with "_" carry form chrome and are
// ignored; keys addressing removed slots are skipped. Fields always take the
// posted values, but the document changes only when every value applies.
func (f *Form) Submit(ctx context.Context, values map[string]string) (*Submission, error) {
	fields := make(map[string]string, len(values))
	for key, value := range values {
		if strings.HasPrefix(key, "_") {
			continue
		}
		fields[key] = value
	}
	f.syncFields(fields)
	if err := f.doc.Clone().ApplyValues(fields); err != nil {
		return nil, err
	}
	if err := f.doc.ApplyValues(fields); err != nil {
		return nil, err
	}

	compacted := document.Compact(f.doc)
	if f.validate != nil {
		if err := f.validate(ctx, compacted); err != nil {
			return nil, err
		}
	}
	data, err := document.Marshal(compacted)
	if err != nil {
		return nil, err
	}
	return &Submission{Document: compacted, JSON: data}, nil
}

func (f *Form) syncFields(values map[string]string) {
	f.root.Walk(func(b *Block) bool {
		for i := range b.Fields {
			if v, ok := values[b.Fields[i].Name]; ok {
				b.Fields[i].Value = v
			}
		}
		return true
	})
}

func (f *Form) nextID() string {
	id := fmt.Sprintf("%s%d", f.prefix, f.seq)
	f.seq++
	return id
}

func (f *Form) mount(b *Block) {
	b.Walk(func(n *Block) bool {
		f.mounted[n.ID] = n
		return true
	})
}

func (f *Form) unmount(b *Block) {
	b.Walk(func(n *Block) bool {
		delete(f.mounted, n.ID)
		return true
	})
	b.detach()
}

func (f *Form) column(set, col int) (*columnView, bool) {
	sv, ok := f.sets[set]
	if !ok {
		return nil, false
	}
	cv, ok := sv.columns[col]
	return cv, ok
}

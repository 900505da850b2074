package editor

import (
	"slices"

	"github.com/goliatone/go-viewdef/pkg/document"
)

// Kind names what a block renders.
type Kind string

const (
	KindForm         Kind = "form"
	KindIdentity     Kind = "identity"
	KindResultModel  Kind = "result-model-definition"
	KindExecution    Kind = "execution-parameters"
	KindTabs         Kind = "tabs"
	KindTab          Kind = "tab"
	KindSets         Kind = "calculation-sets"
	KindSet          Kind = "calculation-set"
	KindSetHeader    Kind = "calculation-set-top"
	KindColumn       Kind = "column-values"
	KindRequirements Kind = "portfolio-requirements"
	KindRequirement  Kind = "portfolio-requirement"
)

// FieldKind selects the control used for a field.
type FieldKind string

const (
	FieldText       FieldKind = "text"
	FieldNumber     FieldKind = "number"
	FieldSelect     FieldKind = "select"
	FieldLookup     FieldKind = "lookup"
	FieldProperties FieldKind = "properties"
)

// Lookup resources used by selector fields.
const (
	ResourcePortfolios   = "portfolios"
	ResourceSecurities   = "securities"
	ResourceRequirements = "valuerequirementnames"
)

// Field is an editable control. Name is the submission key and always equals
// Path.String().
type Field struct {
	ID          string
	Name        string
	Path        document.Path
	Label       string
	Kind        FieldKind
	Value       string
	Options     []string
	Resource    string
	Placeholder string
}

func newField(path document.Path, kind FieldKind, label, value string) Field {
	return Field{Name: path.String(), Path: path, Kind: kind, Label: label, Value: value}
}

// Action names an interaction handled by a block.
type Action string

const (
	ActionActivate          Action = "activate"
	ActionAddSet            Action = "add-set"
	ActionRemoveSet         Action = "remove-set"
	ActionRename            Action = "rename"
	ActionAddColumn         Action = "add-column"
	ActionRemoveColumn      Action = "remove-column"
	ActionAddRequirement    Action = "add-requirement"
	ActionRemoveRequirement Action = "remove-requirement"
)

// Handler runs an action for the block that owns it.
type Handler func(ev Event) ([]Patch, error)

// Block is one node of the editor tree. A block owns its children and its
// handlers; unmounting a block detaches both.
type Block struct {
	ID       string
	Kind     Kind
	Title    string
	Label    string
	Fields   []Field
	Children []*Block
	Hidden   bool
	Active   bool

	parent   *Block
	handlers map[Action]Handler
}

func newBlock(id string, kind Kind) *Block {
	return &Block{ID: id, Kind: kind}
}

// On binds h to action, replacing any previous handler.
func (b *Block) On(action Action, h Handler) {
	if b.handlers == nil {
		b.handlers = make(map[Action]Handler)
	}
	b.handlers[action] = h
}

// Actions lists the actions the block handles, sorted.
func (b *Block) Actions() []Action {
	out := make([]Action, 0, len(b.handlers))
	for action := range b.handlers {
		out = append(out, action)
	}
	slices.Sort(out)
	return out
}

// Handles reports whether the block binds action.
func (b *Block) Handles(action Action) bool {
	_, ok := b.handlers[action]
	return ok
}

// Parent returns the owning block, nil for the root or a detached block.
func (b *Block) Parent() *Block { return b.parent }

// Field returns the field whose path ends in name.
func (b *Block) Field(name string) (Field, bool) {
	for _, f := range b.Fields {
		if last, ok := f.Path.Last(); ok && last.Name() == name {
			return f, true
		}
	}
	return Field{}, false
}

func (b *Block) setField(name, value string) {
	for i := range b.Fields {
		if last, ok := b.Fields[i].Path.Last(); ok && last.Name() == name {
			b.Fields[i].Value = value
			return
		}
	}
}

func (b *Block) append(child *Block) {
	child.parent = b
	b.Children = append(b.Children, child)
}

func (b *Block) detach() {
	if b.parent == nil {
		return
	}
	b.parent.Children = slices.DeleteFunc(b.parent.Children, func(c *Block) bool { return c == b })
	b.parent = nil
}

// Walk visits b and its descendants depth first until fn returns false.
func (b *Block) Walk(fn func(*Block) bool) bool {
	if !fn(b) {
		return false
	}
	for _, child := range b.Children {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// itemPath locates the list slot a removable block stands for: the path of
// its first bound field without the final step.
func (b *Block) itemPath() (document.Path, bool) {
	if len(b.Fields) == 0 {
		return nil, false
	}
	parent, _, ok := b.Fields[0].Path.Parent()
	return parent, ok
}

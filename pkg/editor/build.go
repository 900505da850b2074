package editor

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/goliatone/go-viewdef/pkg/document"
)

// Build constructs the block tree for doc and mounts it. doc is edited in
// place by the returned Form.
func Build(doc *document.Document, opts ...Option) (*Form, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	f := &Form{
		doc:     doc,
		mounted: make(map[string]*Block),
		tabs:    NewTabs(),
		sets:    make(map[int]*setView),
		prefix:  DefaultIDPrefix,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	f.root = newBlock(IDRoot, KindForm)
	f.root.Title = doc.Name
	f.root.append(f.identityBlock())
	f.root.append(f.resultModelBlock())
	f.root.append(f.executionBlock())

	f.tabsRoot = newBlock(IDTabs, KindTabs)
	f.tabsRoot.On(ActionAddSet, func(ev Event) ([]Patch, error) {
		return f.AddSet(ev.Value)
	})
	f.setsRoot = newBlock(IDSets, KindSets)
	f.root.append(f.tabsRoot)
	f.root.append(f.setsRoot)

	for idx, set := range doc.CalculationSets.All() {
		sv := f.buildSet(idx, set)
		f.tabs.Add(idx, set.Name)
		f.tabsRoot.append(sv.tab)
		f.setsRoot.append(sv.holder)
	}
	if active, ok := f.tabs.Active(); ok {
		sv := f.sets[active]
		sv.tab.Active = true
		sv.holder.Hidden = false
	}

	f.mount(f.root)
	return f, nil
}

func (f *Form) identityBlock() *Block {
	b := newBlock(IDIdentity, KindIdentity)
	portfolio := newField(document.NewPath(document.FieldStep(document.FieldIdentifier)), FieldLookup, "Portfolio", f.doc.Identifier)
	portfolio.ID = document.FieldIdentifier
	portfolio.Resource = ResourcePortfolios
	portfolio.Placeholder = "Please choose a portfolio..."
	currency := newField(document.NewPath(document.FieldStep(document.FieldCurrency)), FieldText, "Currency", f.doc.Currency)
	currency.ID = document.FieldCurrency
	b.Fields = []Field{portfolio, currency}
	return b
}

func (f *Form) resultModelBlock() *Block {
	b := newBlock(IDResultModel, KindResultModel)
	b.Title = "Result Model Definition"
	for _, mode := range document.OutputModes {
		value, _ := f.doc.ResultModelDefinition.Mode(mode)
		field := newField(document.ResultModelPath(mode), FieldSelect, outputLabel(mode), value)
		field.ID = f.nextID()
		field.Options = append([]string{""}, document.OutputModeValues...)
		b.Fields = append(b.Fields, field)
	}
	return b
}

func (f *Form) executionBlock() *Block {
	b := newBlock(IDExecution, KindExecution)
	b.Title = "Execution Parameters"
	for _, name := range document.PeriodFields {
		var value string
		if p, _ := f.doc.Period(name); p != nil {
			value = strconv.FormatInt(*p, 10)
		}
		field := newField(document.NewPath(document.FieldStep(name)), FieldNumber, periodLabel(name), value)
		field.ID = name
		b.Fields = append(b.Fields, field)
	}
	return b
}

func (f *Form) buildSet(idx int, set *document.CalculationSet) *setView {
	sv := &setView{columns: make(map[int]*columnView)}
	base := document.SetPath(idx)

	sv.holder = newBlock(f.nextID(), KindSet)
	sv.holder.Hidden = true
	sv.holder.On(ActionAddColumn, func(Event) ([]Patch, error) { return f.AddColumn(idx) })
	sv.holder.On(ActionRemoveSet, func(Event) ([]Patch, error) { return f.RemoveSet(idx) })

	sv.header = newBlock(f.nextID(), KindSetHeader)
	sv.header.Fields = []Field{
		newField(base.Field(document.FieldName), FieldText, "Name", set.Name),
		newField(base.Field(document.FieldDefaultProperties), FieldProperties, "Default Properties", set.DefaultProperties.String()),
	}
	sv.header.On(ActionRename, func(ev Event) ([]Patch, error) { return f.RenameSet(idx, ev.Value) })
	sv.holder.append(sv.header)

	sv.tab = newBlock(f.nextID(), KindTab)
	sv.tab.Label = set.Name
	sv.tab.On(ActionActivate, func(Event) ([]Patch, error) { return f.ActivateTab(idx) })

	f.sets[idx] = sv
	for col, entry := range set.Columns.All() {
		cv := f.buildColumn(idx, col, entry)
		sv.columns[col] = cv
		sv.holder.append(cv.block)
	}
	return sv
}

func (f *Form) buildColumn(set, col int, entry *document.ColumnEntry) *columnView {
	cv := &columnView{items: make(map[int]*Block)}
	base := document.ColumnPath(set, col)

	cv.block = newBlock(f.nextID(), KindColumn)
	security := newField(base.Field(document.FieldSecurityType), FieldLookup, "Security Type", entry.SecurityType)
	security.Resource = ResourceSecurities
	security.Placeholder = "Please select..."
	cv.block.Fields = []Field{security}
	cv.block.On(ActionAddRequirement, func(Event) ([]Patch, error) { return f.AddRequirement(set, col) })
	cv.block.On(ActionRemoveColumn, func(Event) ([]Patch, error) { return f.RemoveColumn(set, col) })

	cv.requirements = newBlock(f.nextID(), KindRequirements)
	cv.block.append(cv.requirements)
	for req, item := range entry.Requirements.All() {
		rb := f.buildRequirement(set, col, req, item)
		cv.items[req] = rb
		cv.requirements.append(rb)
	}
	return cv
}

func (f *Form) buildRequirement(set, col, req int, item *document.PortfolioRequirement) *Block {
	base := document.RequirementPath(set, col, req)

	b := newBlock(f.nextID(), KindRequirement)
	b.Title = fmt.Sprintf("Portfolio Requirement %d", req+1)
	output := newField(base.Field(document.FieldRequiredOutput), FieldLookup, "Required Output", item.RequiredOutput)
	output.Resource = ResourceRequirements
	output.Placeholder = "Please select..."
	b.Fields = []Field{
		output,
		newField(base.Field(document.FieldConstraints), FieldProperties, "Constraints", item.Constraints.String()),
	}
	b.On(ActionRemoveRequirement, func(Event) ([]Patch, error) { return f.RemoveRequirement(set, col, req) })
	return b
}

func outputLabel(mode string) string {
	switch mode {
	case document.OutputPrimitive:
		return "Primitives"
	case document.OutputSecurity:
		return "Securities"
	case document.OutputPosition:
		return "Positions"
	case document.OutputAggregatePosition:
		return "Aggregate Positions"
	case document.OutputTrade:
		return "Trades"
	default:
		return mode
	}
}

func periodLabel(name string) string {
	switch name {
	case document.FieldMinDeltaCalc:
		return "Min Delta Calc Period"
	case document.FieldMaxDeltaCalc:
		return "Max Delta Calc Period"
	case document.FieldMinFullCalc:
		return "Min Full Calc Period"
	case document.FieldMaxFullCalc:
		return "Max Full Calc Period"
	default:
		return name
	}
}

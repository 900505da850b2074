package editor

import (
	"fmt"

	"github.com/goliatone/go-viewdef/pkg/document"
)

// ActivateTab shows set's sub-tree, hides the others and moves the active
// marker. Activating the active tab is a no-op.
func (f *Form) ActivateTab(set int) ([]Patch, error) {
	sv, ok := f.sets[set]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTab, set)
	}
	previous, hadActive := f.tabs.Active()
	changed, err := f.tabs.Activate(set)
	if err != nil || !changed {
		return nil, err
	}

	var patches []Patch
	for _, idx := range f.tabs.Order() {
		other := f.sets[idx]
		switch {
		case idx == set:
			other.holder.Hidden = false
			patches = append(patches, Patch{Op: OpShow, Target: other.holder.ID})
		case !other.holder.Hidden:
			other.holder.Hidden = true
			patches = append(patches, Patch{Op: OpHide, Target: other.holder.ID})
		}
	}
	if hadActive {
		if prev, ok := f.sets[previous]; ok {
			prev.tab.Active = false
			patches = append(patches, Patch{Op: OpDeactivate, Target: prev.tab.ID})
		}
	}
	sv.tab.Active = true
	patches = append(patches, Patch{Op: OpActivate, Target: sv.tab.ID})
	return patches, nil
}

// AddColumn appends an empty column entry to set and its block to the set's
// sub-tree.
func (f *Form) AddColumn(set int) ([]Patch, error) {
	sv, ok := f.sets[set]
	if !ok {
		return nil, fmt.Errorf("%w: set %d", ErrUnknownBlock, set)
	}
	target, ok := f.doc.CalculationSets.At(set)
	if !ok {
		return nil, fmt.Errorf("%w: set %d", document.ErrHole, set)
	}

	entry := document.ColumnEntry{Requirements: document.NewList[document.PortfolioRequirement]()}
	col := target.Columns.Append(entry)
	added, _ := target.Columns.At(col)

	cv := f.buildColumn(set, col, added)
	sv.columns[col] = cv
	sv.holder.append(cv.block)
	f.mount(cv.block)
	return []Patch{{Op: OpAppend, Target: sv.holder.ID, Block: cv.block}}, nil
}

// RemoveColumn turns column col of set into a hole and drops its sub-tree.
func (f *Form) RemoveColumn(set, col int) ([]Patch, error) {
	cv, ok := f.column(set, col)
	if !ok {
		return nil, fmt.Errorf("%w: column %d.%d", ErrUnknownBlock, set, col)
	}
	if err := f.removeItem(cv.block); err != nil {
		return nil, err
	}
	delete(f.sets[set].columns, col)
	return []Patch{{Op: OpRemove, Target: cv.block.ID}}, nil
}

// AddRequirement appends an empty portfolio requirement to a column entry.
func (f *Form) AddRequirement(set, col int) ([]Patch, error) {
	cv, ok := f.column(set, col)
	if !ok {
		return nil, fmt.Errorf("%w: column %d.%d", ErrUnknownBlock, set, col)
	}
	target, ok := f.doc.CalculationSets.At(set)
	if !ok {
		return nil, fmt.Errorf("%w: set %d", document.ErrHole, set)
	}
	entry, ok := target.Columns.At(col)
	if !ok {
		return nil, fmt.Errorf("%w: column %d.%d", document.ErrHole, set, col)
	}

	req := entry.Requirements.Append(document.PortfolioRequirement{Constraints: document.Properties{}})
	added, _ := entry.Requirements.At(req)

	rb := f.buildRequirement(set, col, req, added)
	cv.items[req] = rb
	cv.requirements.append(rb)
	f.mount(rb)
	return []Patch{{Op: OpAppend, Target: cv.requirements.ID, Block: rb}}, nil
}

// RemoveRequirement turns requirement req into a hole and drops its block.
func (f *Form) RemoveRequirement(set, col, req int) ([]Patch, error) {
	cv, ok := f.column(set, col)
	if !ok {
		return nil, fmt.Errorf("%w: column %d.%d", ErrUnknownBlock, set, col)
	}
	rb, ok := cv.items[req]
	if !ok {
		return nil, fmt.Errorf("%w: requirement %d.%d.%d", ErrUnknownBlock, set, col, req)
	}
	if err := f.removeItem(rb); err != nil {
		return nil, err
	}
	delete(cv.items, req)
	return []Patch{{Op: OpRemove, Target: rb.ID}}, nil
}

// RemoveSet turns set into a hole, drops its tab and sub-tree and moves
// activation when the removed tab was active.
func (f *Form) RemoveSet(set int) ([]Patch, error) {
	sv, ok := f.sets[set]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTab, set)
	}
	if err := f.removeItem(sv.header); err != nil {
		return nil, err
	}
	tr, err := f.tabs.Remove(set)
	if err != nil {
		return nil, err
	}

	f.unmount(sv.tab)
	f.unmount(sv.holder)
	delete(f.sets, set)

	patches := []Patch{
		{Op: OpRemove, Target: sv.tab.ID},
		{Op: OpRemove, Target: sv.holder.ID},
	}
	if tr.Activated >= 0 {
		next := f.sets[tr.Activated]
		next.tab.Active = true
		next.holder.Hidden = false
		patches = append(patches,
			Patch{Op: OpActivate, Target: next.tab.ID},
			Patch{Op: OpShow, Target: next.holder.ID},
		)
	}
	return patches, nil
}

// RenameSet mirrors a name typed into set's name field onto the active tab's
// label. The document itself changes only on submit.
func (f *Form) RenameSet(set int, name string) ([]Patch, error) {
	sv, ok := f.sets[set]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTab, set)
	}
	sv.header.setField(document.FieldName, name)

	active, ok := f.tabs.Rename(name)
	if !ok {
		return nil, nil
	}
	tab := f.sets[active].tab
	tab.Label = name
	return []Patch{{Op: OpText, Target: tab.ID, Text: name}}, nil
}

// AddSet appends a calculation set named name with its tab and sub-tree. The
// new set is activated only when no tab is active.
func (f *Form) AddSet(name string) ([]Patch, error) {
	set := f.doc.CalculationSets.Append(document.CalculationSet{
		Name:              name,
		DefaultProperties: document.Properties{},
		Columns:           document.NewList[document.ColumnEntry](),
	})
	added, _ := f.doc.CalculationSets.At(set)

	sv := f.buildSet(set, added)
	f.tabs.Add(set, name)
	if active, _ := f.tabs.Active(); active == set {
		sv.tab.Active = true
		sv.holder.Hidden = false
	}
	f.tabsRoot.append(sv.tab)
	f.setsRoot.append(sv.holder)
	f.mount(sv.tab)
	f.mount(sv.holder)

	return []Patch{
		{Op: OpAppend, Target: f.tabsRoot.ID, Block: sv.tab},
		{Op: OpAppend, Target: f.setsRoot.ID, Block: sv.holder},
	}, nil
}

// removeItem locates the slot b stands for through its bound field, turns
// it into a hole and unmounts b.
func (f *Form) removeItem(b *Block) error {
	path, ok := b.itemPath()
	if !ok {
		return fmt.Errorf("%w: block %s has no bound field", ErrUnknownBlock, b.ID)
	}
	if err := f.doc.Remove(path); err != nil {
		return err
	}
	if b.Kind == KindSetHeader {
		return nil
	}
	f.unmount(b)
	return nil
}

package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/goliatone/go-viewdef/pkg/faults"
)

// Compact returns a copy of doc with holes removed from the calculation sets,
// then from each surviving set's columns, then from each surviving column's
// requirements. Relative order is preserved at every level and doc is not
// modified.
func Compact(doc *Document) *Document {
	if doc == nil {
		return nil
	}
	out := doc.Clone()
	out.CalculationSets = mapList(doc.CalculationSets, true, cloneSet)
	return out
}

// Decode reads a JSON document. Holes encoded as null are kept.
func Decode(r io.Reader) (*Document, error) {
	if r == nil {
		return nil, faults.New(faults.KindPrecondition, fmt.Errorf("document: missing reader"))
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, faults.New(faults.KindValidation, fmt.Errorf("document: decode: %w", err))
	}
	return &doc, nil
}

// Unmarshal decodes a JSON document from data.
func Unmarshal(data []byte) (*Document, error) {
	return Decode(bytes.NewReader(data))
}

// Marshal compacts doc and encodes it as compact JSON, the form sent to the
// configuration service.
func Marshal(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, faults.New(faults.KindPrecondition, fmt.Errorf("document: nil document"))
	}
	data, err := json.Marshal(Compact(doc))
	if err != nil {
		return nil, fmt.Errorf("document: encode: %w", err)
	}
	return data, nil
}

// MarshalIndent compacts doc and encodes it with four-space indentation, the
// form shown in the generic configuration view.
func MarshalIndent(doc *Document) ([]byte, error) {
	data, err := Marshal(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "    "); err != nil {
		return nil, fmt.Errorf("document: indent: %w", err)
	}
	return buf.Bytes(), nil
}

package document

import (
	"bytes"
	"encoding/json"
	"sort"
)

// extras holds object members the typed model does not know about. They are
// written back verbatim so a document survives an edit with everything the
// configuration service stored alongside it.
type extras map[string]json.RawMessage

var (
	documentFields    = []string{FieldName, FieldIdentifier, FieldCurrency, FieldResultModel, FieldMinDeltaCalc, FieldMaxDeltaCalc, FieldMinFullCalc, FieldMaxFullCalc, FieldCalculationSets}
	resultModelFields = OutputModes
	setFields         = []string{FieldName, FieldDefaultProperties, FieldColumns}
	columnFields      = []string{FieldSecurityType, FieldRequirements}
	requirementFields = []string{FieldRequiredOutput, FieldConstraints}
)

// unknownMembers returns the members of the JSON object data not named in
// known. It returns nil when there are none.
func unknownMembers(data []byte, known []string) (extras, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for _, name := range known {
		delete(members, name)
	}
	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}

// decodeObject decodes with UseNumber so free-form properties keep their
// numeric text.
func decodeObject(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// withMembers appends extra to the encoded object, in key order.
func withMembers(object []byte, extra extras) ([]byte, error) {
	if len(extra) == 0 {
		return object, nil
	}
	object = bytes.TrimSpace(object)
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(object[:len(object)-1])
	empty := len(object) == 2
	for _, key := range keys {
		if !empty {
			buf.WriteByte(',')
		}
		empty = false
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(extra[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (e extras) clone() extras {
	if e == nil {
		return nil
	}
	out := make(extras, len(e))
	for key, raw := range e {
		out[key] = append(json.RawMessage(nil), raw...)
	}
	return out
}

// Extra returns the raw value of a member the document does not model.
func (d *Document) Extra(name string) (json.RawMessage, bool) {
	if d == nil {
		return nil, false
	}
	raw, ok := d.extra[name]
	return raw, ok
}

type documentJSON Document

// MarshalJSON encodes the modelled fields followed by the unknown members.
func (d Document) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(documentJSON(d))
	if err != nil {
		return nil, err
	}
	return withMembers(data, d.extra)
}

// UnmarshalJSON decodes the modelled fields and keeps the rest.
func (d *Document) UnmarshalJSON(data []byte) error {
	var known documentJSON
	if err := decodeObject(data, &known); err != nil {
		return err
	}
	extra, err := unknownMembers(data, documentFields)
	if err != nil {
		return err
	}
	*d = Document(known)
	d.extra = extra
	return nil
}

type resultModelJSON ResultModelDefinition

func (r ResultModelDefinition) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(resultModelJSON(r))
	if err != nil {
		return nil, err
	}
	return withMembers(data, r.extra)
}

func (r *ResultModelDefinition) UnmarshalJSON(data []byte) error {
	var known resultModelJSON
	if err := decodeObject(data, &known); err != nil {
		return err
	}
	extra, err := unknownMembers(data, resultModelFields)
	if err != nil {
		return err
	}
	*r = ResultModelDefinition(known)
	r.extra = extra
	return nil
}

type setJSON CalculationSet

func (s CalculationSet) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(setJSON(s))
	if err != nil {
		return nil, err
	}
	return withMembers(data, s.extra)
}

func (s *CalculationSet) UnmarshalJSON(data []byte) error {
	var known setJSON
	if err := decodeObject(data, &known); err != nil {
		return err
	}
	extra, err := unknownMembers(data, setFields)
	if err != nil {
		return err
	}
	*s = CalculationSet(known)
	s.extra = extra
	return nil
}

type columnJSON ColumnEntry

func (c ColumnEntry) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(columnJSON(c))
	if err != nil {
		return nil, err
	}
	return withMembers(data, c.extra)
}

func (c *ColumnEntry) UnmarshalJSON(data []byte) error {
	var known columnJSON
	if err := decodeObject(data, &known); err != nil {
		return err
	}
	extra, err := unknownMembers(data, columnFields)
	if err != nil {
		return err
	}
	*c = ColumnEntry(known)
	c.extra = extra
	return nil
}

type requirementJSON PortfolioRequirement

func (p PortfolioRequirement) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(requirementJSON(p))
	if err != nil {
		return nil, err
	}
	return withMembers(data, p.extra)
}

func (p *PortfolioRequirement) UnmarshalJSON(data []byte) error {
	var known requirementJSON
	if err := decodeObject(data, &known); err != nil {
		return err
	}
	extra, err := unknownMembers(data, requirementFields)
	if err != nil {
		return err
	}
	*p = PortfolioRequirement(known)
	p.extra = extra
	return nil
}

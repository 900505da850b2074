package document

// JSON field names of the view definition document. They double as the
// submission keys produced by Path.String.
const (
	FieldName              = "name"
	FieldIdentifier        = "identifier"
	FieldCurrency          = "currency"
	FieldResultModel       = "resultModelDefinition"
	FieldMinDeltaCalc      = "minDeltaCalcPeriod"
	FieldMaxDeltaCalc      = "maxDeltaCalcPeriod"
	FieldMinFullCalc       = "minFullCalcPeriod"
	FieldMaxFullCalc       = "maxFullCalcPeriod"
	FieldCalculationSets   = "calculationConfiguration"
	FieldDefaultProperties = "defaultProperties"
	FieldColumns           = "portfolioRequirementsBySecurityType"
	FieldSecurityType      = "securityType"
	FieldRequirements      = "portfolioRequirement"
	FieldRequiredOutput    = "requiredOutput"
	FieldConstraints       = "constraints"
)

// Output mode field names inside resultModelDefinition, in display order.
const (
	OutputPrimitive         = "primitiveOutputMode"
	OutputSecurity          = "securityOutputMode"
	OutputPosition          = "positionOutputMode"
	OutputAggregatePosition = "aggregatePositionOutputMode"
	OutputTrade             = "tradeOutputMode"
)

// OutputModes lists the result model output mode fields in display order.
var OutputModes = []string{
	OutputPrimitive,
	OutputSecurity,
	OutputPosition,
	OutputAggregatePosition,
	OutputTrade,
}

// Output mode values accepted by every output mode field.
const (
	ModeNone            = "NONE"
	ModeTerminalOutputs = "TERMINAL_OUTPUTS"
	ModeAll             = "ALL"
)

// OutputModeValues lists the accepted output mode values.
var OutputModeValues = []string{ModeNone, ModeTerminalOutputs, ModeAll}

// PeriodFields lists the execution parameter fields in display order.
var PeriodFields = []string{
	FieldMinDeltaCalc,
	FieldMaxDeltaCalc,
	FieldMinFullCalc,
	FieldMaxFullCalc,
}

// Document is a view definition configuration document.
type Document struct {
	Name                  string                `json:"name"`
	Identifier            string                `json:"identifier,omitempty"`
	Currency              string                `json:"currency,omitempty"`
	ResultModelDefinition ResultModelDefinition `json:"resultModelDefinition"`
	MinDeltaCalcPeriod    *int64                `json:"minDeltaCalcPeriod,omitempty"`
	MaxDeltaCalcPeriod    *int64                `json:"maxDeltaCalcPeriod,omitempty"`
	MinFullCalcPeriod     *int64                `json:"minFullCalcPeriod,omitempty"`
	MaxFullCalcPeriod     *int64                `json:"maxFullCalcPeriod,omitempty"`
	CalculationSets       List[CalculationSet]  `json:"calculationConfiguration"`

	extra extras
}

// ResultModelDefinition selects which outputs the engine produces per target
// type.
type ResultModelDefinition struct {
	PrimitiveOutputMode         string `json:"primitiveOutputMode,omitempty"`
	SecurityOutputMode          string `json:"securityOutputMode,omitempty"`
	PositionOutputMode          string `json:"positionOutputMode,omitempty"`
	AggregatePositionOutputMode string `json:"aggregatePositionOutputMode,omitempty"`
	TradeOutputMode             string `json:"tradeOutputMode,omitempty"`

	extra extras
}

// Mode returns the value of the named output mode field.
func (r ResultModelDefinition) Mode(field string) (string, bool) {
	switch field {
	case OutputPrimitive:
		return r.PrimitiveOutputMode, true
	case OutputSecurity:
		return r.SecurityOutputMode, true
	case OutputPosition:
		return r.PositionOutputMode, true
	case OutputAggregatePosition:
		return r.AggregatePositionOutputMode, true
	case OutputTrade:
		return r.TradeOutputMode, true
	default:
		return "", false
	}
}

func (r *ResultModelDefinition) setMode(field, value string) bool {
	switch field {
	case OutputPrimitive:
		r.PrimitiveOutputMode = value
	case OutputSecurity:
		r.SecurityOutputMode = value
	case OutputPosition:
		r.PositionOutputMode = value
	case OutputAggregatePosition:
		r.AggregatePositionOutputMode = value
	case OutputTrade:
		r.TradeOutputMode = value
	default:
		return false
	}
	return true
}

// CalculationSet is one named configuration of output columns.
type CalculationSet struct {
	Name              string            `json:"name"`
	DefaultProperties Properties        `json:"defaultProperties"`
	Columns           List[ColumnEntry] `json:"portfolioRequirementsBySecurityType"`

	extra extras
}

// ColumnEntry is a security-type scoped set of requested outputs.
type ColumnEntry struct {
	SecurityType string                     `json:"securityType"`
	Requirements List[PortfolioRequirement] `json:"portfolioRequirement"`

	extra extras
}

// PortfolioRequirement is one named output request plus its constraints.
type PortfolioRequirement struct {
	RequiredOutput string     `json:"requiredOutput"`
	Constraints    Properties `json:"constraints"`

	extra extras
}

// Period returns the execution parameter stored under field.
func (d *Document) Period(field string) (*int64, bool) {
	if d == nil {
		return nil, false
	}
	switch field {
	case FieldMinDeltaCalc:
		return d.MinDeltaCalcPeriod, true
	case FieldMaxDeltaCalc:
		return d.MaxDeltaCalcPeriod, true
	case FieldMinFullCalc:
		return d.MinFullCalcPeriod, true
	case FieldMaxFullCalc:
		return d.MaxFullCalcPeriod, true
	default:
		return nil, false
	}
}

func (d *Document) setPeriod(field string, value *int64) bool {
	switch field {
	case FieldMinDeltaCalc:
		d.MinDeltaCalcPeriod = value
	case FieldMaxDeltaCalc:
		d.MaxDeltaCalcPeriod = value
	case FieldMinFullCalc:
		d.MinFullCalcPeriod = value
	case FieldMaxFullCalc:
		d.MaxFullCalcPeriod = value
	default:
		return false
	}
	return true
}

// Clone returns a deep copy of the document. Holes are preserved.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.extra = d.extra.clone()
	out.ResultModelDefinition.extra = d.ResultModelDefinition.extra.clone()
	out.MinDeltaCalcPeriod = clonePeriod(d.MinDeltaCalcPeriod)
	out.MaxDeltaCalcPeriod = clonePeriod(d.MaxDeltaCalcPeriod)
	out.MinFullCalcPeriod = clonePeriod(d.MinFullCalcPeriod)
	out.MaxFullCalcPeriod = clonePeriod(d.MaxFullCalcPeriod)
	out.CalculationSets = mapList(d.CalculationSets, false, cloneSet)
	return &out
}

func cloneSet(set CalculationSet, compact bool) CalculationSet {
	set.DefaultProperties = set.DefaultProperties.Clone()
	set.extra = set.extra.clone()
	set.Columns = mapList(set.Columns, compact, cloneColumn)
	return set
}

func cloneColumn(col ColumnEntry, compact bool) ColumnEntry {
	col.extra = col.extra.clone()
	col.Requirements = mapList(col.Requirements, compact, cloneRequirement)
	return col
}

func cloneRequirement(req PortfolioRequirement, _ bool) PortfolioRequirement {
	req.Constraints = req.Constraints.Clone()
	req.extra = req.extra.clone()
	return req
}

func clonePeriod(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

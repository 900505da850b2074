// Package schema validates view definition documents against the OpenAPI
// description of the configuration service embedded in this package.
package schema

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-viewdef/pkg/document"
	"github.com/goliatone/go-viewdef/pkg/faults"
)

// ViewDefinitionSchema names the component schema used for documents.
const ViewDefinitionSchema = "ViewDefinition"

//go:embed openapi.yaml
var specData []byte

var (
	specOnce sync.Once
	spec     *openapi3.T
	specErr  error
)

// Spec returns the parsed and validated OpenAPI document.
func Spec(ctx context.Context) (*openapi3.T, error) {
	specOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(specData)
		if err != nil {
			specErr = fmt.Errorf("schema: load openapi: %w", err)
			return
		}
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			specErr = fmt.Errorf("schema: validate openapi: %w", err)
			return
		}
		spec = doc
	})
	return spec, specErr
}

// Raw returns the embedded OpenAPI YAML.
func Raw() []byte {
	return append([]byte(nil), specData...)
}

// Issue is one validation failure.
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError aggregates issues found in a document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "schema: invalid document"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Field == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	return "schema: " + strings.Join(parts, "; ")
}

// Validate checks the compacted form of doc against the ViewDefinition schema
// and a few cross-field rules the schema cannot express.
func Validate(ctx context.Context, doc *document.Document) error {
	if doc == nil {
		return faults.New(faults.KindPrecondition, errors.New("schema: nil document"))
	}
	api, err := Spec(ctx)
	if err != nil {
		return faults.New(faults.KindInternal, err)
	}
	if api.Components == nil {
		return faults.New(faults.KindInternal, errors.New("schema: openapi document has no components"))
	}
	ref, ok := api.Components.Schemas[ViewDefinitionSchema]
	if !ok || ref == nil || ref.Value == nil {
		return faults.New(faults.KindInternal, fmt.Errorf("schema: component %q missing", ViewDefinitionSchema))
	}

	value, err := genericValue(doc)
	if err != nil {
		return faults.New(faults.KindInternal, err)
	}

	var issues []Issue
	if err := ref.Value.VisitJSON(value, openapi3.MultiErrors()); err != nil {
		issues = append(issues, issuesFrom(err)...)
	}
	issues = append(issues, periodIssues(doc)...)
	if len(issues) == 0 {
		return nil
	}
	return faults.New(faults.KindValidation, &ValidationError{Issues: issues})
}

func genericValue(doc *document.Document) (any, error) {
	data, err := document.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("schema: decode generic: %w", err)
	}
	return out, nil
}

func issuesFrom(err error) []Issue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []Issue
		for _, item := range multi {
			out = append(out, issuesFrom(item)...)
		}
		return out
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return []Issue{{
			Field:   strings.Join(schemaErr.JSONPointer(), "."),
			Message: schemaErr.Reason,
		}}
	}
	return []Issue{{Message: err.Error()}}
}

func periodIssues(doc *document.Document) []Issue {
	var out []Issue
	pairs := [][2]string{
		{document.FieldMinDeltaCalc, document.FieldMaxDeltaCalc},
		{document.FieldMinFullCalc, document.FieldMaxFullCalc},
	}
	for _, pair := range pairs {
		lo, _ := doc.Period(pair[0])
		hi, _ := doc.Period(pair[1])
		if lo != nil && hi != nil && *lo > *hi {
			out = append(out, Issue{
				Field:   pair[0],
				Message: fmt.Sprintf("must not exceed %s", pair[1]),
			})
		}
	}
	return out
}

package render_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-viewdef/pkg/document/schema"
	"github.com/goliatone/go-viewdef/pkg/editor"
	"github.com/goliatone/go-viewdef/pkg/faults"
	"github.com/goliatone/go-viewdef/pkg/render"
	"github.com/goliatone/go-viewdef/pkg/testsupport"
)

func TestMapErrorPayloadTranslatesCompactedIndices(t *testing.T) {
	form, err := editor.Build(testsupport.SampleDocument(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if _, err := form.RemoveRequirement(0, 0, 0); err != nil {
		t.Fatalf("remove requirement: %v", err)
	}
	if _, err := form.RemoveSet(1); err != nil {
		t.Fatalf("remove set: %v", err)
	}

	payload := map[string][]string{
		"/data/calculationConfiguration/0/portfolioRequirementsBySecurityType/0/portfolioRequirement/0/requiredOutput": {"unknown output"},
		"calculationConfiguration.1.name":   {"name is required"},
		"currency":                          {" must be an ISO code ", "must be an ISO code"},
		"$.body.minFullCalcPeriod":          {"must not exceed maxFullCalcPeriod"},
		"calculationConfiguration.1.colour": {"unknown field"},
		"calculationConfiguration":          {"at least one set"},
		"non_field_errors":                  {"stale version"},
		"":                                  {"  "},
	}

	mapped := render.MapErrorPayload(form, payload)

	wantFields := map[string][]string{
		"calculationConfiguration.0.portfolioRequirementsBySecurityType.0.portfolioRequirement.1.requiredOutput": {"unknown output"},
		"calculationConfiguration.2.name": {"name is required"},
		"currency":                        {"must be an ISO code"},
		"minFullCalcPeriod":               {"must not exceed maxFullCalcPeriod"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"at least one set", "unknown field", "stale version"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMapErrorPayloadWithoutForm(t *testing.T) {
	mapped := render.MapErrorPayload(nil, map[string][]string{"name": {"bad"}})
	if mapped.Fields != nil {
		t.Fatalf("expected no field errors without a form, got %v", mapped.Fields)
	}
	if diff := cmp.Diff([]string{"bad"}, mapped.Form); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestIssuePayload(t *testing.T) {
	err := faults.New(faults.KindValidation, &schema.ValidationError{Issues: []schema.Issue{
		{Field: "currency", Message: "bad pattern"},
		{Field: "currency", Message: "too short"},
		{Message: "document rejected"},
	}})
	want := map[string][]string{
		"currency": {"bad pattern", "too short"},
		"form":     {"document rejected"},
	}
	if diff := cmp.Diff(want, render.IssuePayload(err)); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if render.IssuePayload(errors.New("plain")) != nil {
		t.Fatalf("expected nil payload for errors without issues")
	}
}

package lookups

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-viewdef/pkg/faults"
)

func TestLoadOptions_ParsesPairsAndBareValues(t *testing.T) {
	input := strings.NewReader("# comment\nB|Bravo\n\nA\nB|Duplicate\n  C | Charlie \n")
	got, err := LoadOptions(input)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []Option{
		{Value: "A", Label: "A"},
		{Value: "B", Label: "Bravo"},
		{Value: "C", Label: "Charlie"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestBuiltinOptions(t *testing.T) {
	for _, name := range []string{ResourcePortfolios, ResourceSecurities, ResourceRequirements} {
		options, ok, err := BuiltinOptions(name)
		if err != nil || !ok || len(options) == 0 {
			t.Fatalf("%s: expected embedded options, got %d ok=%v err=%v", name, len(options), ok, err)
		}
	}
	if _, ok, _ := BuiltinOptions("unknown"); ok {
		t.Fatalf("expected unknown resource to be missing")
	}
}

func TestSearch_PrefixMatchesRankFirst(t *testing.T) {
	options := []Option{
		{Value: "FX Present Value", Label: "FX Present Value"},
		{Value: "Present Value", Label: "Present Value"},
		{Value: "Vega", Label: "Vega"},
	}
	got := Search(options, "present", 0, NewOptions())
	want := []Option{options[1], options[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}

	if got := Search(options, "", 2, NewOptions()); len(got) != 2 {
		t.Fatalf("expected empty query to return the top 2, got %v", got)
	}
	if got := Search(options, "", 0, NewOptions(WithEmptySearchMode(EmptySearchNone))); got != nil {
		t.Fatalf("expected no results in none mode, got %v", got)
	}
	if got := Search(options, "a", -1, NewOptions()); got != nil {
		t.Fatalf("expected negative limit to return nothing, got %v", got)
	}
}

func TestCatalog_StaticAndDynamicSources(t *testing.T) {
	catalog := NewCatalog()
	catalog.Set("Securities", []Option{{Value: "BOND", Label: "BOND"}})

	calls := 0
	if err := catalog.Register(ResourcePortfolios, SourceFunc(func(ctx context.Context, resource string) ([]Option, error) {
		calls++
		return []Option{{Value: "P1", Label: "Desk"}}, nil
	})); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := catalog.Lookup(context.Background(), "securities")
	if err != nil || len(got) != 1 || got[0].Value != "BOND" {
		t.Fatalf("unexpected static lookup: %v %v", got, err)
	}
	got[0].Value = "mutated"
	again, _ := catalog.Lookup(context.Background(), "securities")
	if again[0].Value != "BOND" {
		t.Fatalf("lookup must return a copy")
	}

	if _, err := catalog.Lookup(context.Background(), ResourcePortfolios); err != nil || calls != 1 {
		t.Fatalf("expected dynamic source call, calls=%d err=%v", calls, err)
	}

	_, err = catalog.Lookup(context.Background(), "missing")
	if !faults.Is(err, faults.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if diff := cmp.Diff([]string{ResourcePortfolios, ResourceSecurities}, catalog.Resources()); diff != "" {
		t.Fatalf("resources mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalog_SourceErrorsBecomeServiceFaults(t *testing.T) {
	catalog := NewCatalog()
	boom := errors.New("backend down")
	_ = catalog.Register("portfolios", SourceFunc(func(context.Context, string) ([]Option, error) {
		return nil, boom
	}))
	_, err := catalog.Lookup(context.Background(), "portfolios")
	if !faults.Is(err, faults.KindService) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped service fault, got %v", err)
	}
}

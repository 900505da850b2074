package message

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func TestLoadingStages(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	center := NewCenter(WithClock(clock.Now))

	center.Loading("details", 3*time.Second)
	view, ok := center.Current("details")
	if !ok || view.Text != TextLoading {
		t.Fatalf("expected loading text, got %+v", view)
	}

	clock.now = clock.now.Add(3 * time.Second)
	view, _ = center.Current("details")
	if view.Text != TextStillLoading {
		t.Fatalf("expected still loading text, got %+v", view)
	}

	center.Destroy("details")
	if _, ok := center.Current("details"); ok {
		t.Fatalf("expected message cleared")
	}
}

func TestPersistentBannerSurvivesDestroy(t *testing.T) {
	center := NewCenter()
	center.Warn("details", `This configuration has been deleted<script>alert(1)</script>`)

	center.Destroy("details")
	view, ok := center.Current("details")
	if !ok || !view.Persistent {
		t.Fatalf("expected persistent banner to survive destroy")
	}
	if strings.Contains(view.HTML, "script") {
		t.Fatalf("banner html not sanitised: %q", view.HTML)
	}

	center.Clear("details")
	if diff := cmp.Diff([]string{}, center.Locations()); diff != "" {
		t.Fatalf("locations mismatch (-want +got):\n%s", diff)
	}
}

func TestDialogs(t *testing.T) {
	center := NewCenter()
	if _, err := center.FieldValue("name"); err != ErrNoDialog {
		t.Fatalf("expected ErrNoDialog, got %v", err)
	}

	center.Open(Dialog{
		Type:   DialogInput,
		Title:  "Add configuration",
		Fields: []DialogField{{Type: "input", Name: "Name", ID: "name", Value: "Desk"}},
		HTML:   `<b>ok</b><img src=x onerror=alert(1)>`,
	})
	d, ok := center.Dialog()
	if !ok || d.Type != DialogInput || d.HTML != "<b>ok</b>" {
		t.Fatalf("unexpected dialog %+v", d)
	}
	if v, _ := center.FieldValue("name"); v != "Desk" {
		t.Fatalf("unexpected field value %q", v)
	}

	center.CloseDialog()
	if _, ok := center.Dialog(); ok {
		t.Fatalf("expected dialog closed")
	}
}

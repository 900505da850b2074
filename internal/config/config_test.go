package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewdef.yaml")
	body := `
server:
  addr: ":9090"
store:
  driver: sqlite
  dsn: /tmp/viewdef.db
editor:
  disabledButtons: block
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	want := Default()
	want.Server.Addr = ":9090"
	want.Store = Store{Driver: DriverSQLite, DSN: "/tmp/viewdef.db"}
	want.Editor.DisabledButtons = "block"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsUnknownKeysAndBadValues(t *testing.T) {
	cases := map[string]string{
		"unknown key":  "server:\n  port: 1\n",
		"bad driver":   "store:\n  driver: redis\n",
		"missing dsn":  "store:\n  driver: postgres\n",
		"bad policy":   "editor:\n  disabledButtons: hide\n",
		"zero history": "history:\n  limit: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			if err := Decode(strings.NewReader(body), &cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	cfg := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse([]string{"-addr", ":7000", "-log-format", "json"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Server.Addr != ":7000" || cfg.Log.Format != "json" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.Editor.SlowLoading != 3*time.Second {
		t.Fatalf("unexpected slow loading default %v", cfg.Editor.SlowLoading)
	}
}

func TestPathFromArgs(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{args: []string{"-addr", ":1", "-config", "a.yaml"}, want: "a.yaml"},
		{args: []string{"--config=b.yaml"}, want: "b.yaml"},
		{args: []string{"-addr", ":1"}, want: "env.yaml"},
		{args: []string{"--", "-config", "c.yaml"}, want: "env.yaml"},
	}
	for _, tc := range cases {
		if got := PathFromArgs(tc.args, "env.yaml"); got != tc.want {
			t.Fatalf("%v: got %q want %q", tc.args, got, tc.want)
		}
	}
}

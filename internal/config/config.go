// Package config loads the YAML configuration shared by the viewdef binaries.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the root configuration document.
type Config struct {
	Server  Server  `yaml:"server"`
	Log     Log     `yaml:"log"`
	Store   Store   `yaml:"store"`
	Editor  Editor  `yaml:"editor"`
	Theme   Theme   `yaml:"theme"`
	History History `yaml:"history"`
	Service Service `yaml:"service"`
}

type Server struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	// SessionTTL bounds how long an idle editing session is kept.
	SessionTTL time.Duration `yaml:"sessionTTL"`
}

type Log struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

type Store struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	// Seed optionally names a JSON view definition loaded into an empty store.
	Seed string `yaml:"seed"`
}

type Editor struct {
	// DisabledButtons is "style" or "block".
	DisabledButtons string        `yaml:"disabledButtons"`
	SlowLoading     time.Duration `yaml:"slowLoading"`
}

type Theme struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
}

type History struct {
	Limit int `yaml:"limit"`
}

// Service points the CLI at a running server's REST API.
type Service struct {
	BaseURL string        `yaml:"baseURL"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			SessionTTL:   30 * time.Minute,
		},
		Log:     Log{Format: "text", Level: "info"},
		Store:   Store{Driver: DriverMemory},
		Editor:  Editor{DisabledButtons: "style", SlowLoading: 3 * time.Second},
		Theme:   Theme{Name: "default", Variant: "light"},
		History: History{Limit: 10},
		Service: Service{BaseURL: "http://localhost:8080", Timeout: 10 * time.Second},
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Decode(bytes.NewReader(data), &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges YAML from r into cfg, rejecting unknown keys.
func Decode(r io.Reader, cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil target")
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.Validate()
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver != DriverMemory && strings.TrimSpace(c.Store.DSN) == "" {
		return fmt.Errorf("config: store driver %q requires a dsn", c.Store.Driver)
	}
	switch c.Editor.DisabledButtons {
	case "style", "block":
	default:
		return fmt.Errorf("config: editor.disabledButtons must be style or block, got %q", c.Editor.DisabledButtons)
	}
	if c.History.Limit <= 0 {
		return errors.New("config: history.limit must be positive")
	}
	return nil
}

// RegisterFlags binds the commonly overridden settings to fs. Flags parsed
// after Load override file values.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Server.Addr, "addr", c.Server.Addr, "HTTP listen address")
	fs.StringVar(&c.Log.Format, "log-format", c.Log.Format, "log format (text|json)")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "log level (debug|info|warn|error)")
	fs.StringVar(&c.Store.Driver, "store", c.Store.Driver, "store driver (memory|sqlite|postgres)")
	fs.StringVar(&c.Store.DSN, "dsn", c.Store.DSN, "store data source name")
	fs.StringVar(&c.Store.Seed, "seed", c.Store.Seed, "view definition JSON loaded into an empty store")
	fs.StringVar(&c.Theme.Name, "theme", c.Theme.Name, "theme name")
	fs.StringVar(&c.Theme.Variant, "theme-variant", c.Theme.Variant, "theme variant")
	fs.StringVar(&c.Service.BaseURL, "service", c.Service.BaseURL, "configuration service base URL")
}

// PathFromArgs returns the value of the -config flag in args, accepting the
// "-config path", "-config=path" and double dash forms, or fallback when it
// is absent. It lets binaries load the file before the remaining flags are
// parsed on top of it.
func PathFromArgs(args []string, fallback string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if value, ok := strings.CutPrefix(name, "config="); ok {
			return value
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return fallback
}

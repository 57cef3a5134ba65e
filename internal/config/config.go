package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/stackup/internal/model"
	"github.com/shinji-kodama/stackup/internal/port"
	"github.com/shinji-kodama/stackup/internal/wait"
)

// DefaultComposeFile is the compose file used when none is configured.
const DefaultComposeFile = "docker-compose.yml"

// Candidates lists the auto-discovered file names in priority order.
var Candidates = []string{
	"stackup.yaml",
	"stackup.yml",
	"stackup.toml",
	"stackup.json",
	"stackup.jsonc",
}

// Duration is a time.Duration written as a Go duration string ("2s").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler, which yaml.v3, toml
// and encoding/json all honor.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ServiceRange overrides one service's port defaults. Zero fields keep
// the default.
type ServiceRange struct {
	Preferred int `json:"preferred" yaml:"preferred" toml:"preferred"`
	Min       int `json:"min" yaml:"min" toml:"min"`
	Max       int `json:"max" yaml:"max" toml:"max"`
}

// Services groups the per-service overrides.
type Services struct {
	PHP   ServiceRange `json:"php" yaml:"php" toml:"php"`
	MySQL ServiceRange `json:"mysql" yaml:"mysql" toml:"mysql"`
	Redis ServiceRange `json:"redis" yaml:"redis" toml:"redis"`
	Nginx ServiceRange `json:"nginx" yaml:"nginx" toml:"nginx"`
}

// MySQLTest overrides the upper bound of the test database scan.
type MySQLTest struct {
	Max int `json:"max" yaml:"max" toml:"max"`
}

// Wait overrides the readiness policy.
type Wait struct {
	Attempts int      `json:"attempts" yaml:"attempts" toml:"attempts"`
	Interval Duration `json:"interval" yaml:"interval" toml:"interval"`
}

// File is the on-disk settings document.
type File struct {
	Host         string    `json:"host" yaml:"host" toml:"host"`
	ProbeTimeout Duration  `json:"probeTimeout" yaml:"probeTimeout" toml:"probeTimeout"`
	Services     Services  `json:"services" yaml:"services" toml:"services"`
	MySQLTest    MySQLTest `json:"mysqlTest" yaml:"mysqlTest" toml:"mysqlTest"`
	Wait         Wait      `json:"wait" yaml:"wait" toml:"wait"`
	ComposeFile  string    `json:"composeFile" yaml:"composeFile" toml:"composeFile"`
}

// Settings is the effective configuration after defaults are applied.
type Settings struct {
	// Source is the file the settings came from, empty for defaults.
	Source       string
	Host         string
	ProbeTimeout time.Duration
	Plan         port.Plan
	Wait         wait.Policy
	ComposeFile  string
}

// Defaults returns the built-in settings.
func Defaults() *Settings {
	return &Settings{
		Host:        port.DefaultHost,
		Plan:        port.DefaultPlan(),
		Wait:        wait.DefaultPolicy(),
		ComposeFile: DefaultComposeFile,
	}
}

// Discover returns the first candidate settings file in dir, or "" when
// there is none.
func Discover(dir string) string {
	for _, name := range Candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load resolves the settings for dir. An explicit path must exist; without
// one the directory is searched and defaults are used when nothing is
// found. Every failure is a CLIError with ExitInvalidConfig.
func Load(dir, explicit string) (*Settings, error) {
	path := explicit
	if path == "" {
		path = Discover(dir)
		if path == "" {
			return Defaults(), nil
		}
	}

	file, err := ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitInvalidConfig, fmt.Sprintf("failed to load settings file %s", path), err)
	}

	settings, err := file.Apply(Defaults())
	if err != nil {
		return nil, model.WrapCLIError(model.ExitInvalidConfig, fmt.Sprintf("invalid settings file %s", path), err)
	}
	settings.Source = path
	return settings, nil
}

// ReadFile decodes a settings file, choosing the format by extension.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &f)
	case ".toml":
		err = decodeTOML(data, &f)
	case ".json", ".jsonc":
		err = decodeJSON(data, &f)
	default:
		return nil, fmt.Errorf("unsupported settings format %q (use .yaml, .yml, .toml, .json or .jsonc)", ext)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func decodeYAML(data []byte, f *File) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document is a valid, empty settings file.
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func decodeTOML(data []byte, f *File) error {
	md, err := toml.Decode(string(data), f)
	if err != nil {
		return fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return nil
}

func decodeJSON(data []byte, f *File) error {
	// Comments and trailing commas are stripped before parsing.
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// Apply overlays f on base and validates the result.
func (f *File) Apply(base *Settings) (*Settings, error) {
	s := *base

	if f.Host != "" {
		s.Host = f.Host
	}
	if f.ProbeTimeout != 0 {
		s.ProbeTimeout = time.Duration(f.ProbeTimeout)
	}
	s.Plan.PHP = overlay(s.Plan.PHP, f.Services.PHP)
	s.Plan.MySQL = overlay(s.Plan.MySQL, f.Services.MySQL)
	s.Plan.Redis = overlay(s.Plan.Redis, f.Services.Redis)
	s.Plan.Nginx = overlay(s.Plan.Nginx, f.Services.Nginx)
	if f.MySQLTest.Max != 0 {
		s.Plan.MySQLTestMax = f.MySQLTest.Max
	}
	if f.Wait.Attempts != 0 {
		s.Wait.MaxAttempts = f.Wait.Attempts
	}
	if f.Wait.Interval != 0 {
		s.Wait.Interval = time.Duration(f.Wait.Interval)
	}
	if f.ComposeFile != "" {
		s.ComposeFile = f.ComposeFile
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func overlay(r port.Range, o ServiceRange) port.Range {
	if o.Preferred != 0 {
		r.Preferred = o.Preferred
	}
	if o.Min != 0 {
		r.Min = o.Min
	}
	if o.Max != 0 {
		r.Max = o.Max
	}
	return r
}

// Validate checks the effective settings.
func (s *Settings) Validate() error {
	if err := s.Plan.Validate(); err != nil {
		return err
	}
	if err := s.Wait.Validate(); err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	if s.ProbeTimeout < 0 {
		return fmt.Errorf("probeTimeout must not be negative, got %s", s.ProbeTimeout)
	}
	if filepath.IsAbs(s.ComposeFile) || strings.HasPrefix(filepath.Clean(s.ComposeFile), "..") {
		return fmt.Errorf("composeFile %q must be a path inside the project directory", s.ComposeFile)
	}
	return nil
}

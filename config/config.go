// Package config loads engine settings from YAML or TOML files.
//
// The format is chosen by file extension: .yaml and .yml decode with
// gopkg.in/yaml.v3, .toml with github.com/pelletier/go-toml/v2. Fields
// missing from a file keep their Default values and unknown fields are
// rejected.
//
//	s, err := config.Load("g3d.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := s.Validate(); err != nil {
//	    return err
//	}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a settings file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	// ErrUnknownFormat is returned for files that are neither YAML nor TOML.
	ErrUnknownFormat = errors.New("config: unknown format")

	// ErrInvalid is wrapped by every Validate failure.
	ErrInvalid = errors.New("config: invalid settings")
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Settings configures a renderer session.
type Settings struct {
	// Backend names a registered backend. Empty selects the best
	// available one.
	Backend  string `yaml:"backend" toml:"backend"`
	Width    int    `yaml:"width" toml:"width"`
	Height   int    `yaml:"height" toml:"height"`
	LogLevel string `yaml:"log_level" toml:"log_level"`
	// Profiling publishes render statistics as performance counters.
	Profiling bool `yaml:"profiling" toml:"profiling"`

	Camera Camera `yaml:"camera" toml:"camera"`
	Text   Text   `yaml:"text" toml:"text"`
	Demo   Demo   `yaml:"demo" toml:"demo"`
}

// Camera configures the main perspective camera.
type Camera struct {
	FOV  float32    `yaml:"fov" toml:"fov"`
	Near float32    `yaml:"near" toml:"near"`
	Far  float32    `yaml:"far" toml:"far"`
	Eye  [3]float32 `yaml:"eye" toml:"eye"`
}

// Text configures the UI font renderer.
type Text struct {
	Size      float64    `yaml:"size" toml:"size"`
	AtlasSize int        `yaml:"atlas_size" toml:"atlas_size"`
	Color     [4]float32 `yaml:"color" toml:"color"`
}

// Demo configures the headless demo scene.
type Demo struct {
	Frames    int `yaml:"frames" toml:"frames"`
	Cubes     int `yaml:"cubes" toml:"cubes"`
	Instances int `yaml:"instances" toml:"instances"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Width:    800,
		Height:   600,
		LogLevel: "info",
		Camera: Camera{
			FOV:  45,
			Near: 0.1,
			Far:  100,
			Eye:  [3]float32{0, 2, 6},
		},
		Text: Text{
			Size:      16,
			AtlasSize: 512,
			Color:     [4]float32{1, 1, 1, 1},
		},
		Demo: Demo{
			Frames:    3,
			Cubes:     4,
			Instances: 16,
		},
	}
}

// Load reads the settings file at path on top of Default.
func Load(path string) (Settings, error) {
	f, err := FormatOf(path)
	if err != nil {
		return Settings{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: %w", err)
	}
	s, err := Parse(data, f)
	if err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes data in format f on top of Default.
func Parse(data []byte, f Format) (Settings, error) {
	s := Default()
	switch f {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and leaves the defaults.
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return Settings{}, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return Settings{}, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return s, nil
}

// Marshal encodes s in format f.
func (s Settings) Marshal(f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatTOML:
		return toml.Marshal(s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Save writes s to path in the format implied by its extension.
func (s Settings) Save(path string) error {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := s.Marshal(f)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}
	if s.Width <= 0 || s.Height <= 0 {
		invalid("size %dx%d", s.Width, s.Height)
	}
	if _, err := s.Level(); err != nil {
		invalid("log_level %q", s.LogLevel)
	}
	if s.Camera.FOV <= 0 || s.Camera.FOV >= 180 {
		invalid("camera.fov %v not in (0, 180)", s.Camera.FOV)
	}
	if s.Camera.Near <= 0 || s.Camera.Far <= s.Camera.Near {
		invalid("camera near %v far %v", s.Camera.Near, s.Camera.Far)
	}
	if s.Text.Size <= 0 {
		invalid("text.size %v", s.Text.Size)
	}
	if s.Text.AtlasSize <= 0 {
		invalid("text.atlas_size %d", s.Text.AtlasSize)
	}
	if s.Demo.Frames < 0 || s.Demo.Cubes < 0 || s.Demo.Instances < 0 {
		invalid("demo counts must not be negative")
	}
	return errors.Join(errs...)
}

// Level parses LogLevel. Empty means info.
func (s Settings) Level() (slog.Level, error) {
	var l slog.Level
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: %w", err)
	}
	return l, nil
}

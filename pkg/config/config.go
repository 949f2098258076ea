// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/mediabackup/pkg/media"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📅 DateSource names how a file's date is chosen
type DateSource string

const (
	DateSourceModTime DateSource = "mtime"
	DateSourceExif    DateSource = "exif"
)

// 📚 Config is the immutable run configuration.
// MediaExtensions is the key older config files used and is merged into SupportedExtensions.
type Config struct {
	SupportedExtensions []string   `json:"supported_extensions,omitempty" yaml:"supported_extensions,omitempty"`
	MediaExtensions     []string   `json:"media_extensions,omitempty" yaml:"media_extensions,omitempty"`
	Recursive           *bool      `json:"recursive,omitempty" yaml:"recursive,omitempty"`
	IgnorePatterns      []string   `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty"`
	DateSource          DateSource `json:"date_source,omitempty" yaml:"date_source,omitempty"`
}

// 🏭 Default returns the configuration used when no file is available
func Default() *Config {
	recursive := true
	return &Config{
		SupportedExtensions: append([]string(nil), media.DefaultExtensions...),
		Recursive:           &recursive,
		DateSource:          DateSourceModTime,
	}
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🛟 LoadOrDefault loads path and falls back to Default when the file is
// missing or malformed. The fallback is logged, never returned as an error.
func LoadOrDefault(ctx context.Context, path string) *Config {
	cfg, err := Load(ctx, path)
	if err != nil {
		level := zerolog.WarnLevel
		if errors.Is(err, os.ErrNotExist) {
			level = zerolog.DebugLevel
		}
		zerolog.Ctx(ctx).WithLevel(level).Err(err).Str("path", path).Msg("using default configuration")
		return Default()
	}
	return cfg
}

// 🔍 Validate normalizes the config and checks its values
func (cfg *Config) Validate() error {
	// Merge and normalize extensions
	seen := make(map[string]bool)
	var exts []string
	for _, ext := range append(append([]string(nil), cfg.SupportedExtensions...), cfg.MediaExtensions...) {
		ext = media.NormalizeExtension(ext)
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		exts = append(exts, ext)
	}
	cfg.SupportedExtensions = exts
	cfg.MediaExtensions = nil

	// Set defaults
	if cfg.Recursive == nil {
		recursive := true
		cfg.Recursive = &recursive
	}
	if cfg.DateSource == "" {
		cfg.DateSource = DateSourceModTime
	}

	switch cfg.DateSource {
	case DateSourceModTime, DateSourceExif:
	default:
		return errors.Errorf("date_source must be %q or %q, got %q", DateSourceModTime, DateSourceExif, cfg.DateSource)
	}

	for _, pattern := range cfg.IgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	return nil
}

// IsRecursive reports whether subdirectories of the source are scanned
func (cfg *Config) IsRecursive() bool {
	return cfg.Recursive == nil || *cfg.Recursive
}

// 📚 Registry builds the extension registry for this config
func (cfg *Config) Registry() *media.Registry {
	return media.NewRegistry(cfg.SupportedExtensions)
}

// 📅 Resolver builds the date resolver for this config
func (cfg *Config) Resolver(reg *media.Registry) media.DateResolver {
	if cfg.DateSource == DateSourceExif {
		return media.ExifResolver{Registry: reg}
	}
	return media.ModTimeResolver{}
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%d extensions, recursive=%t, date_source=%s, %d ignore patterns",
		len(cfg.SupportedExtensions), cfg.IsRecursive(), cfg.DateSource, len(cfg.IgnorePatterns))
}

// 💾 WriteDefault writes Default to path in the format implied by its
// extension. An existing file is never replaced.
func WriteDefault(path string) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = marshalJSON(Default())
	case ".yaml", ".yml":
		data, err = yaml.Marshal(Default())
	case ".hcl":
		data = marshalHCL(Default())
	default:
		return errors.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
	if err != nil {
		return errors.Errorf("encoding default config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("creating config directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Errorf("creating config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.Errorf("writing config file: %w", err)
	}
	return f.Close()
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	name := strings.ToLower(strings.TrimSpace(filename))
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}

	return &cfg, nil
}

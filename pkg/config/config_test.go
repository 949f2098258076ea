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
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/mediabackup/pkg/media"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// 🧪 TestLoad tests config parsing across formats
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "json_minimal",
			file: "mediabackup.json",
			config: `{
				"supported_extensions": [".JPG", "mp4", ".jpg"]
			}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{".jpg", ".mp4"}, cfg.SupportedExtensions)
				assert.True(t, cfg.IsRecursive(), "recursion defaults to on")
				assert.Equal(t, DateSourceModTime, cfg.DateSource)
			},
		},
		{
			name: "json_legacy_key",
			file: "backup_config.json",
			config: `{
				"media_extensions": [".png", ".mov"],
				"recursive": false
			}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{".png", ".mov"}, cfg.SupportedExtensions)
				assert.Nil(t, cfg.MediaExtensions)
				assert.False(t, cfg.IsRecursive())
			},
		},
		{
			name:        "json_unknown_field",
			file:        "mediabackup.json",
			config:      `{"supported_extension": [".jpg"]}`,
			wantErr:     true,
			errContains: "unknown field",
		},
		{
			name:        "json_malformed",
			file:        "mediabackup.json",
			config:      `{"supported_extensions": [`,
			wantErr:     true,
			errContains: "parsing JSON",
		},
		{
			name: "yaml_full",
			file: "mediabackup.yaml",
			config: `
supported_extensions:
  - .heic
  - .mkv
recursive: true
ignore_patterns:
  - "**/.trash/**"
date_source: exif
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{".heic", ".mkv"}, cfg.SupportedExtensions)
				assert.Equal(t, []string{"**/.trash/**"}, cfg.IgnorePatterns)
				assert.Equal(t, DateSourceExif, cfg.DateSource)
			},
		},
		{
			name:        "yaml_bad_date_source",
			file:        "mediabackup.yml",
			config:      "date_source: ctime\n",
			wantErr:     true,
			errContains: "date_source",
		},
		{
			name: "hcl_full",
			file: "mediabackup.hcl",
			config: `
supported_extensions = [".jpg", ".webm"]
recursive            = false
ignore_patterns      = ["tmp/*"]
date_source          = "mtime"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{".jpg", ".webm"}, cfg.SupportedExtensions)
				assert.False(t, cfg.IsRecursive())
				assert.Equal(t, []string{"tmp/*"}, cfg.IgnorePatterns)
			},
		},
		{
			name:        "hcl_bad_ignore_pattern",
			file:        "mediabackup.hcl",
			config:      `ignore_patterns = ["[oops"]`,
			wantErr:     true,
			errContains: "invalid ignore pattern",
		},
		{
			name:        "unknown_format",
			file:        "mediabackup.toml",
			config:      `recursive = true`,
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.config)

			cfg, err := Load(testContext(t), path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing_file",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.json")
			},
		},
		{
			name: "malformed_file",
			path: func(t *testing.T) string {
				return writeConfig(t, "broken.json", "{not json")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadOrDefault(testContext(t), tt.path(t))
			require.NotNil(t, cfg)
			assert.Equal(t, Default(), cfg)
			assert.Equal(t, len(media.DefaultExtensions), cfg.Registry().Len())
		})
	}
}

func TestWriteDefault(t *testing.T) {
	for _, name := range []string{
		"mediabackup.json", "mediabackup.yaml", "mediabackup.hcl",
		"MEDIABACKUP.JSON", "cfg.YAML", "cfg.Yml", "cfg.HCL",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			require.NoError(t, WriteDefault(path))

			cfg, err := Load(testContext(t), path)
			require.NoError(t, err)
			assert.Equal(t, media.DefaultExtensions, cfg.SupportedExtensions)
			assert.True(t, cfg.IsRecursive())
			assert.Equal(t, DateSourceModTime, cfg.DateSource)
		})
	}
}

func TestGetParserIgnoresCase(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "json_upper", filename: "a.JSON", want: &JSONParser{}},
		{name: "yaml_upper", filename: "a.YAML", want: &YAMLParser{}},
		{name: "yml_mixed", filename: "a.Yml", want: &YAMLParser{}},
		{name: "hcl_upper", filename: "a.HCL", want: &HCLParser{}},
		{name: "unknown", filename: "a.toml", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.IsType(t, tt.want, got)
		})
	}
}

func TestWriteDefaultNeverOverwrites(t *testing.T) {
	path := writeConfig(t, "mediabackup.json", `{"supported_extensions": [".gif"]}`)

	err := WriteDefault(path)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"supported_extensions": [".gif"]}`, string(data))
}

func TestResolver(t *testing.T) {
	cfg := Default()
	reg := cfg.Registry()
	assert.IsType(t, media.ModTimeResolver{}, cfg.Resolver(reg))

	cfg.DateSource = DateSourceExif
	assert.IsType(t, media.ExifResolver{}, cfg.Resolver(reg))
}

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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/mediabackup/cmd/mediabackup/opts"
	"github.com/walteh/mediabackup/pkg/backup"
	"github.com/walteh/mediabackup/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// overrides are the per-command flags that take precedence over the config file
type overrides struct {
	recursive  bool
	dateSource string
}

func addOverrideFlags(cmd *cobra.Command, ov *overrides) {
	cmd.Flags().BoolVarP(&ov.recursive, "recursive", "r", true, "descend into subfolders of the source")
	cmd.Flags().StringVar(&ov.dateSource, "date-source", "", `date used for folders: "mtime" or "exif" (default from config)`)
}

// effectiveConfig applies changed flags to a copy of the loaded config
func effectiveConfig(cmd *cobra.Command, o *opts.RootOpts, ov *overrides) (*config.Config, error) {
	cfg := *o.Config
	if cmd.Flags().Changed("recursive") {
		recursive := ov.recursive
		cfg.Recursive = &recursive
	}
	if ov.dateSource != "" {
		cfg.DateSource = config.DateSource(ov.dateSource)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("invalid options: %w", err)
	}
	return &cfg, nil
}

func newBackup(cfg *config.Config, progress backup.ProgressFunc) (*backup.Backup, error) {
	reg := cfg.Registry()
	if reg.Len() == 0 {
		return nil, errors.Errorf("no supported extensions configured")
	}
	b, err := backup.New(backup.Options{
		Registry:       reg,
		Resolver:       cfg.Resolver(reg),
		Recursive:      cfg.IsRecursive(),
		IgnorePatterns: cfg.IgnorePatterns,
		Progress:       progress,
	})
	if err != nil {
		return nil, errors.Errorf("creating backup: %w", err)
	}
	return b, nil
}

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
	"github.com/walteh/mediabackup/pkg/log"
	"gitlab.com/tozd/go/errors"
)

func NewScanCmd(o *opts.RootOpts) *cobra.Command {
	var ov overrides

	cmd := &cobra.Command{
		Use:   "scan SOURCE",
		Short: "Count the media files a run would copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := effectiveConfig(cmd, o, &ov)
			if err != nil {
				return err
			}

			b, err := newBackup(cfg, nil)
			if err != nil {
				return err
			}

			plan, err := b.Scan(cmd.Context(), args[0])
			if err != nil {
				return errors.Errorf("scanning source: %w", err)
			}

			console := log.FromContext(cmd.Context())
			console.Infof("total media files: %d", plan.Total())
			console.Infof("images: %d", plan.Images)
			console.Infof("videos: %d", plan.Videos)
			if n := len(plan.Unreadable); n > 0 {
				console.Warningf("unreadable entries: %d", n)
			}
			return nil
		},
	}

	addOverrideFlags(cmd, &ov)

	return cmd
}

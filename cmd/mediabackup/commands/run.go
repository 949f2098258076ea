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
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/mediabackup/cmd/mediabackup/opts"
	"github.com/walteh/mediabackup/pkg/log"
	"github.com/walteh/mediabackup/pkg/status"
	"gitlab.com/tozd/go/errors"
)

func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	var (
		ov      overrides
		yes     bool
		verbose bool
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "run SOURCE DESTINATION",
		Short: "Copy media files into DESTINATION/YYYY/MM",
		Long: `Run copies every supported media file under SOURCE into
DESTINATION/<year>/<month>/<original name>.
It will:
1. Check both folders
2. Count the images and videos to copy
3. Ask for confirmation (skip with --yes)
4. Copy file by file, never replacing an existing file
5. Print a summary of copied, skipped and failed files`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := zerolog.Ctx(cmd.Context()).With().Str("command", "run").Logger().WithContext(cmd.Context())
			console := log.FromContext(ctx)
			source, destination := args[0], args[1]

			cfg, err := effectiveConfig(cmd, o, &ov)
			if err != nil {
				return err
			}

			var reporter status.Reporter
			if quiet {
				reporter = status.NewLogReporter(nil)
			} else {
				reporter = status.NewBarReporter(console, verbose)
			}

			b, err := newBackup(cfg, status.Progress(ctx, reporter))
			if err != nil {
				return err
			}

			plan, err := b.Prepare(ctx, source, destination)
			if err != nil {
				return errors.Errorf("preparing backup: %w", err)
			}

			if !quiet {
				console.Header(fmt.Sprintf("%s → %s", source, destination))
				console.Infof("found %d media files (%d images, %d videos)", plan.Total(), plan.Images, plan.Videos)
			}
			if n := len(plan.Unreadable); n > 0 {
				console.Warningf("%d entries under %s could not be read and will be reported as failed", n, source)
			}

			if plan.Total() > 0 && !yes {
				ok, err := pterm.DefaultInteractiveConfirm.
					WithDefaultValue(false).
					Show("Do you want to proceed with the backup?")
				if err != nil {
					return errors.Errorf("asking for confirmation (use --yes to skip): %w", err)
				}
				if !ok {
					console.Warning("backup cancelled")
					return nil
				}
			}

			reporter.Start(ctx, plan.Total())
			summary, runErr := b.RunPlan(ctx, plan, destination)
			if summary != nil {
				reporter.Finish(ctx, summary)
			}
			if runErr != nil {
				return errors.Errorf("running backup: %w", runErr)
			}

			if summary.Failed > 0 {
				for _, res := range summary.Failures() {
					zerolog.Ctx(ctx).Debug().Str("file", res.Source).Err(res.Err).Msg("failure detail")
				}
				return errors.Errorf("%d of %d files failed", summary.Failed, summary.Total)
			}

			return nil
		},
	}

	addOverrideFlags(cmd, &ov)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every copied file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no progress bar, log only")

	return cmd
}

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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/walteh/mediabackup/cmd/mediabackup/commands"
	"github.com/walteh/mediabackup/cmd/mediabackup/opts"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	o := &opts.RootOpts{}
	var logCloser io.Closer
	rootCmd := newRootCmd(o, &logCloser)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if o.Console != nil {
			o.Console.Errorf("%v", err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(o *opts.RootOpts, logCloser *io.Closer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mediabackup",
		Short: "Copy photos and videos into a year/month folder tree",
		Long: `mediabackup copies media files from a source folder into
<destination>/<YYYY>/<MM>/<original name>, using each file's date.
Existing files in the destination are never overwritten.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx, closer, err := setupLogging(cmd.Context(), o)
			if err != nil {
				return err
			}
			*logCloser = closer
			newRootOpts(ctx, o)
			cmd.SetContext(ctx)
			return nil
		},
	}

	// Add shared flags
	addRootFlags(rootCmd, o)

	// Add commands
	rootCmd.AddCommand(
		commands.NewRunCmd(o),
		commands.NewScanCmd(o),
		commands.NewConfigCmd(o),
		newVersionCmd(),
	)

	return rootCmd
}

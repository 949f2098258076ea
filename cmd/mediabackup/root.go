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
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/mediabackup/cmd/mediabackup/opts"
	"github.com/walteh/mediabackup/pkg/config"
	"github.com/walteh/mediabackup/pkg/log"
	"gitlab.com/tozd/go/errors"
)

func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "mediabackup.json", "config file path (.json, .yaml or .hcl)")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&o.LogFile, "log-file", "", "also write JSON logs to this file")
}

// setupLogging builds the context logger and the console logger from parsed flags.
// The returned closer releases the log file, if any.
func setupLogging(ctx context.Context, o *opts.RootOpts) (context.Context, io.Closer, error) {
	var file io.WriteCloser
	if o.LogFile != "" {
		f, err := os.OpenFile(o.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return ctx, nil, errors.Errorf("opening log file: %w", err)
		}
		file = f
	}

	logger := newLogger(os.Stderr, file, o.Debug)
	zerolog.DefaultContextLogger = &logger
	ctx = logger.WithContext(ctx)

	mirror := logger
	if !o.Debug {
		mirror = logger.Level(zerolog.Disabled)
	}
	o.Console = log.NewWithZerolog(os.Stdout, mirror)
	ctx = log.NewContext(ctx, o.Console)

	return ctx, file, nil
}

// newLogger writes warnings (or everything with debug) to stderr and, when
// file is set, info and above to file as JSON lines
func newLogger(stderr, file io.Writer, debug bool) zerolog.Logger {
	consoleLevel := zerolog.WarnLevel
	if debug {
		consoleLevel = zerolog.DebugLevel
	}

	level := consoleLevel
	writers := []io.Writer{&zerolog.FilteredLevelWriter{
		Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{Out: stderr}},
		Level:  consoleLevel,
	}}
	if file != nil {
		fileLevel := min(consoleLevel, zerolog.InfoLevel)
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: file},
			Level:  fileLevel,
		})
		level = fileLevel
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
}

func newRootOpts(ctx context.Context, o *opts.RootOpts) {
	o.Config = config.LoadOrDefault(ctx, o.ConfigFile)
	zerolog.Ctx(ctx).Debug().Str("config", o.Config.String()).Msg("configuration ready")
}

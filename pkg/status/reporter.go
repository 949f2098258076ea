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

package status

import (
	"context"
	"sync"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/mediabackup/pkg/backup"
	"github.com/walteh/mediabackup/pkg/log"
)

// 📣 Reporter displays the progress of a backup run
type Reporter interface {
	Start(ctx context.Context, total int)
	Update(ctx context.Context, done, total int, res backup.Result)
	Finish(ctx context.Context, s *backup.Summary)
}

// 🔌 Progress adapts a Reporter to backup.ProgressFunc
func Progress(ctx context.Context, r Reporter) backup.ProgressFunc {
	return func(done, total int, res backup.Result) {
		r.Update(ctx, done, total, res)
	}
}

// 📝 LogReporter reports progress through zerolog only
type LogReporter struct {
	formatter FileFormatter

	mu        sync.Mutex
	total     int
	processed int
}

// 🏭 NewLogReporter creates a reporter that writes to the context logger
func NewLogReporter(formatter FileFormatter) *LogReporter {
	if formatter == nil {
		formatter = NewDefaultFileFormatter()
	}
	return &LogReporter{formatter: formatter}
}

func (r *LogReporter) Start(ctx context.Context, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total = total
	r.processed = 0
	zerolog.Ctx(ctx).Info().Int("total", total).Msg(r.formatter.FormatProgress(0, total))
}

func (r *LogReporter) Update(ctx context.Context, done, total int, res backup.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.processed = done
	r.total = total

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("file", res.Source).Msg(r.formatter.FormatOutcome(res))
	logger.Debug().
		Int("processed", done).
		Int("total", total).
		Msg(r.formatter.FormatProgress(done, total))
}

func (r *LogReporter) Finish(ctx context.Context, s *backup.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	zerolog.Ctx(ctx).Info().
		Int("processed", r.processed).
		Int("total", r.total).
		Msg(r.formatter.FormatSummary(s))
}

// Processed returns the last reported progress
func (r *LogReporter) Processed() (done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed, r.total
}

// 📊 BarReporter draws a terminal progress bar and prints notable results
type BarReporter struct {
	console   *log.Logger
	formatter FileFormatter
	verbose   bool

	bar *pterm.ProgressbarPrinter
}

// 🏭 NewBarReporter creates a progress bar reporter. Skipped and failed files
// are always printed; copied files only when verbose is set.
func NewBarReporter(console *log.Logger, verbose bool) *BarReporter {
	return &BarReporter{
		console:   console,
		formatter: NewDefaultFileFormatter(),
		verbose:   verbose,
	}
}

func (r *BarReporter) Start(ctx context.Context, total int) {
	if total == 0 {
		return
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle("Copying").
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Msg("progress bar unavailable")
		return
	}
	r.bar = bar
}

func (r *BarReporter) Update(ctx context.Context, done, total int, res backup.Result) {
	if r.verbose || res.Outcome != backup.OutcomeCopied {
		r.console.LogResult(ctx, res)
	}
	if r.bar == nil {
		return
	}
	r.bar.UpdateTitle(r.formatter.FormatProgress(done, total))
	r.bar.Increment()
}

func (r *BarReporter) Finish(ctx context.Context, s *backup.Summary) {
	if r.bar != nil {
		_, _ = r.bar.Stop()
		r.bar = nil
	}
	r.console.LogNewline()
	r.console.LogSummary(ctx, s)
	switch {
	case s.Total == 0:
		r.console.Warning(r.formatter.FormatSummary(s))
	case s.Failed > 0 || s.Processed() < s.Total:
		r.console.Error(r.formatter.FormatSummary(s))
	default:
		r.console.Success(r.formatter.FormatSummary(s))
	}
}

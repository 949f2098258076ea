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

package backup

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/mediabackup/pkg/media"
	"gitlab.com/tozd/go/errors"
)

// 📣 ProgressFunc is called once per processed file, on the caller's goroutine.
// done grows by one per call and ends at total.
type ProgressFunc func(done, total int, res Result)

// 🔧 Options configures a Backup
type Options struct {
	// Registry decides which files are media; required
	Registry *media.Registry
	// Resolver picks the date a file is filed under; defaults to media.ModTimeResolver
	Resolver media.DateResolver
	// Recursive descends into subdirectories of the source root
	Recursive bool
	// IgnorePatterns are doublestar globs matched against slash-separated paths relative to the source root
	IgnorePatterns []string
	// Progress receives per-file progress; may be nil
	Progress ProgressFunc
}

// 💾 Backup copies media files into a year/month tree
type Backup struct {
	registry  *media.Registry
	resolver  media.DateResolver
	recursive bool
	ignore    []string
	progress  ProgressFunc
}

// 🏭 New creates a Backup from opts
func New(opts Options) (*Backup, error) {
	if opts.Registry == nil {
		return nil, errors.Errorf("registry is required")
	}
	for _, p := range opts.IgnorePatterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid ignore pattern %q", p)
		}
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = media.ModTimeResolver{}
	}
	return &Backup{
		registry:  opts.Registry,
		resolver:  resolver,
		recursive: opts.Recursive,
		ignore:    opts.IgnorePatterns,
		progress:  opts.Progress,
	}, nil
}

// 🗺️ Plan is the list of media files found under a source root
type Plan struct {
	SourceRoot string
	Files      []string
	Images     int
	Videos     int
	// Unreadable holds entries the scan could not read, each as a failed result
	Unreadable []Result
}

// Total returns the number of files in the plan
func (p *Plan) Total() int {
	return len(p.Files)
}

// 🔍 Scan lists supported files under sourceRoot in lexical order
func (b *Backup) Scan(ctx context.Context, sourceRoot string) (*Plan, error) {
	return b.scan(ctx, sourceRoot, "")
}

func (b *Backup) scan(ctx context.Context, sourceRoot, exclude string) (*Plan, error) {
	logger := zerolog.Ctx(ctx)

	if err := checkSourceRoot(sourceRoot); err != nil {
		return nil, err
	}

	plan := &Plan{SourceRoot: sourceRoot}

	err := filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == sourceRoot {
				return errors.Errorf("%w: %v", ErrSourceRoot, err)
			}
			logger.Warn().Str("path", path).Err(err).Msg("skipping unreadable entry")
			plan.Unreadable = append(plan.Unreadable, Result{
				Source:  path,
				Outcome: OutcomeFailed,
				Err:     errors.Errorf("reading source entry: %w", err),
			})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == sourceRoot {
				return nil
			}
			if !b.recursive || (exclude != "" && path == exclude) {
				return fs.SkipDir
			}
			return nil
		}

		symlink := d.Type()&fs.ModeSymlink != 0
		if !symlink && !d.Type().IsRegular() {
			return nil
		}

		kind := b.registry.Kind(path)
		if kind == media.KindUnsupported {
			return nil
		}

		if b.ignored(ctx, sourceRoot, path) {
			return nil
		}

		if symlink {
			// links to regular files are copied as their target; anything else is reported
			info, err := os.Stat(path)
			if err != nil {
				logger.Warn().Str("path", path).Err(err).Msg("broken symlink")
				plan.Unreadable = append(plan.Unreadable, Result{
					Source:  path,
					Outcome: OutcomeFailed,
					Err:     errors.Errorf("resolving symlink: %w", err),
				})
				return nil
			}
			if !info.Mode().IsRegular() {
				logger.Warn().Str("path", path).Stringer("mode", info.Mode()).Msg("symlink target is not a regular file, skipping")
				return nil
			}
		}

		plan.Files = append(plan.Files, path)
		if kind == media.KindImage {
			plan.Images++
		} else {
			plan.Videos++
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("scanning source: %w", err)
	}

	logger.Debug().
		Str("source", sourceRoot).
		Int("images", plan.Images).
		Int("videos", plan.Videos).
		Int("unreadable", len(plan.Unreadable)).
		Msg("scan complete")

	return plan, nil
}

func (b *Backup) ignored(ctx context.Context, root, path string) bool {
	if len(b.ignore) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range b.ignore {
		// patterns were validated in New
		if ok, _ := doublestar.Match(pattern, rel); ok {
			zerolog.Ctx(ctx).Debug().Str("file", rel).Str("pattern", pattern).Msg("file ignored by pattern")
			return true
		}
	}
	return false
}

// 🏃 Run scans sourceRoot and copies every supported file into destRoot.
// Individual file failures are recorded in the summary and never stop the run.
// An error is returned only for unusable roots or a cancelled context, in which
// case the summary holds whatever was processed before.
func (b *Backup) Run(ctx context.Context, sourceRoot, destRoot string) (*Summary, error) {
	plan, err := b.Prepare(ctx, sourceRoot, destRoot)
	if err != nil {
		return nil, err
	}

	return b.RunPlan(ctx, plan, destRoot)
}

// 🧭 Prepare checks both roots and scans sourceRoot without copying anything.
// When destRoot lies inside sourceRoot its subtree is left out of the plan.
func (b *Backup) Prepare(ctx context.Context, sourceRoot, destRoot string) (*Plan, error) {
	if err := checkDestRoot(destRoot); err != nil {
		return nil, err
	}
	return b.scan(ctx, sourceRoot, nestedDir(sourceRoot, destRoot))
}

// RunPlan copies the files of an existing plan into destRoot
func (b *Backup) RunPlan(ctx context.Context, plan *Plan, destRoot string) (*Summary, error) {
	logger := zerolog.Ctx(ctx)

	if err := checkDestRoot(destRoot); err != nil {
		return nil, err
	}

	summary := &Summary{Total: plan.Total() + len(plan.Unreadable), Started: time.Now()}
	defer func() { summary.Finished = time.Now() }()

	for _, res := range plan.Unreadable {
		summary.record(res)
	}

	if plan.Total() == 0 {
		logger.Info().Str("source", plan.SourceRoot).Msg("no media files found")
		return summary, nil
	}

	if err := os.MkdirAll(destRoot, 0o755); err != nil {
		return summary, errors.Errorf("%w: creating %s: %v", ErrDestRoot, destRoot, err)
	}

	logger.Info().
		Str("source", plan.SourceRoot).
		Str("destination", destRoot).
		Int("total", plan.Total()).
		Msg("starting backup")

	for i, src := range plan.Files {
		if err := ctx.Err(); err != nil {
			logger.Warn().Int("done", i).Int("total", plan.Total()).Msg("backup cancelled")
			return summary, errors.Errorf("backup cancelled: %w", err)
		}

		res := b.processFile(ctx, src, destRoot)
		summary.record(res)

		switch res.Outcome {
		case OutcomeFailed:
			logger.Error().Str("file", src).Err(res.Err).Msg("copy failed")
		case OutcomeSkipped:
			logger.Info().Str("file", src).Str("destination", res.Destination).Msg("destination exists, skipped")
		}

		if b.progress != nil {
			b.progress(i+1, plan.Total(), res)
		}
	}

	logger.Info().
		Int("copied", summary.Copied).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("backup complete")

	return summary, nil
}

func (b *Backup) processFile(ctx context.Context, src, destRoot string) Result {
	dst, err := media.DeriveDestination(ctx, b.resolver, src, destRoot)
	if err != nil {
		return Result{Source: src, Outcome: OutcomeFailed, Err: errors.Errorf("deriving destination: %w", err)}
	}
	return CopyFile(ctx, src, dst)
}

func checkSourceRoot(root string) error {
	if root == "" {
		return errors.Errorf("%w: path is empty", ErrSourceRoot)
	}
	info, err := os.Stat(root)
	if err != nil {
		return errors.Errorf("%w: %v", ErrSourceRoot, err)
	}
	if !info.IsDir() {
		return errors.Errorf("%w: %s is not a directory", ErrSourceRoot, root)
	}
	return nil
}

// checkDestRoot accepts a missing directory; it is created on first copy
func checkDestRoot(root string) error {
	if root == "" {
		return errors.Errorf("%w: path is empty", ErrDestRoot)
	}
	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Errorf("%w: %v", ErrDestRoot, err)
	}
	if !info.IsDir() {
		return errors.Errorf("%w: %s is not a directory", ErrDestRoot, root)
	}
	return nil
}

// nestedDir returns dest when it lies strictly inside source, so scans can skip it
func nestedDir(source, dest string) string {
	absSource, err := filepath.Abs(source)
	if err != nil {
		return ""
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(absSource, absDest)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.Join(source, rel)
}

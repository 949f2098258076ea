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

package backup_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/mediabackup/pkg/backup"
	"github.com/walteh/mediabackup/pkg/media"
)

var may2022 = time.Date(2022, time.May, 10, 9, 0, 0, 0, time.Local)

func newBackup(t *testing.T, opts backup.Options) *backup.Backup {
	t.Helper()
	if opts.Registry == nil {
		opts.Registry = media.NewRegistry(media.DefaultExtensions)
	}
	b, err := backup.New(opts)
	require.NoError(t, err)
	return b
}

func TestNewRequiresRegistry(t *testing.T) {
	_, err := backup.New(backup.Options{})
	require.Error(t, err)

	_, err = backup.New(backup.Options{
		Registry:       media.NewRegistry(media.DefaultExtensions),
		IgnorePatterns: []string{"[unclosed"},
	})
	require.Error(t, err)
}

func TestRunCopiesIntoYearMonth(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")

	writeFile(t, filepath.Join(src, "photo.JPG"), "jpeg", may2022)
	writeFile(t, filepath.Join(src, "trip", "clip.mov"), "mov", time.Date(2021, time.December, 31, 23, 0, 0, 0, time.Local))
	writeFile(t, filepath.Join(src, "notes.txt"), "text", may2022)

	summary, err := newBackup(t, backup.Options{Recursive: true}).Run(ctx, src, out)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total, "unsupported files are not counted")
	assert.Equal(t, 2, summary.Copied)
	assert.Zero(t, summary.Skipped)
	assert.Zero(t, summary.Failed)
	assert.Len(t, summary.Results, 2)

	assert.FileExists(t, filepath.Join(out, "2022", "05", "photo.JPG"))
	assert.FileExists(t, filepath.Join(out, "2021", "12", "clip.mov"))
	assert.NoFileExists(t, filepath.Join(out, "2022", "05", "notes.txt"))
}

func TestRunIsIdempotent(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")

	writeFile(t, filepath.Join(src, "a.jpg"), "a", may2022)
	writeFile(t, filepath.Join(src, "b.mp4"), "b", may2022)

	b := newBackup(t, backup.Options{Recursive: true})

	first, err := b.Run(ctx, src, out)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Copied)

	copied := filepath.Join(out, "2022", "05", "a.jpg")
	before, err := os.Stat(copied)
	require.NoError(t, err)

	second, err := b.Run(ctx, src, out)
	require.NoError(t, err)
	assert.Zero(t, second.Copied)
	assert.Equal(t, 2, second.Skipped)
	assert.Zero(t, second.Failed)

	after, err := os.Stat(copied)
	require.NoError(t, err)
	assert.True(t, before.ModTime().Equal(after.ModTime()))
	assert.Equal(t, before.Size(), after.Size())
}

func TestRunSkipsExistingDestination(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")

	writeFile(t, filepath.Join(src, "photo.jpg"), "fresh", may2022)
	existing := filepath.Join(out, "2022", "05", "photo.jpg")
	oldTime := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.Local)
	writeFile(t, existing, "precious", oldTime)

	summary, err := newBackup(t, backup.Options{}).Run(ctx, src, out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Copied)
	require.Len(t, summary.Results, 1)
	assert.ErrorIs(t, summary.Results[0].Err, backup.ErrDestinationExists)

	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "precious", string(got))
	info, err := os.Stat(existing)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(oldTime))
}

func TestRunEmptySourceCreatesNothing(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	writeFile(t, filepath.Join(src, "readme.txt"), "no media here", may2022)
	out := filepath.Join(dir, "out")

	summary, err := newBackup(t, backup.Options{Recursive: true}).Run(ctx, src, out)
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.Results)

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err), "destination should not be created for an empty run")
}

func TestRunContinuesPastFailures(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")

	writeFile(t, filepath.Join(src, "a.jpg"), "a", time.Date(2018, time.March, 1, 0, 0, 0, 0, time.Local))
	writeFile(t, filepath.Join(src, "b.jpg"), "b", may2022)
	writeFile(t, filepath.Join(src, "c.jpg"), "c", time.Date(2018, time.March, 2, 0, 0, 0, 0, time.Local))

	// a regular file where the 2022 year folder should go makes b.jpg fail
	writeFile(t, filepath.Join(out, "2022"), "blocker", may2022)

	summary, err := newBackup(t, backup.Options{}).Run(ctx, src, out)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Copied)
	assert.Equal(t, 1, summary.Failed)

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, filepath.Join(src, "b.jpg"), failures[0].Source)
	assert.Error(t, failures[0].Err)

	assert.FileExists(t, filepath.Join(out, "2018", "03", "a.jpg"))
	assert.FileExists(t, filepath.Join(out, "2018", "03", "c.jpg"))
}

func TestRunRecursion(t *testing.T) {
	tests := []struct {
		name      string
		recursive bool
		wantTotal int
	}{
		{name: "recursive", recursive: true, wantTotal: 2},
		{name: "top_level_only", recursive: false, wantTotal: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dir := createTestEnv(t)
			src := filepath.Join(dir, "src")
			writeFile(t, filepath.Join(src, "top.jpg"), "top", may2022)
			writeFile(t, filepath.Join(src, "nested", "deep.jpg"), "deep", may2022)

			plan, err := newBackup(t, backup.Options{Recursive: tt.recursive}).Scan(ctx, src)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, plan.Total())
		})
	}
}

func TestScanCountsAndIgnores(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")

	writeFile(t, filepath.Join(src, "a.jpg"), "a", may2022)
	writeFile(t, filepath.Join(src, "b.PNG"), "b", may2022)
	writeFile(t, filepath.Join(src, "c.mp4"), "c", may2022)
	writeFile(t, filepath.Join(src, ".thumbnails", "a.jpg"), "thumb", may2022)
	writeFile(t, filepath.Join(src, "doc.pdf"), "pdf", may2022)

	b := newBackup(t, backup.Options{
		Recursive:      true,
		IgnorePatterns: []string{".thumbnails/**"},
	})

	plan, err := b.Scan(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Total())
	assert.Equal(t, 2, plan.Images)
	assert.Equal(t, 1, plan.Videos)
	assert.Equal(t, []string{
		filepath.Join(src, "a.jpg"),
		filepath.Join(src, "b.PNG"),
		filepath.Join(src, "c.mp4"),
	}, plan.Files)
}

func TestRunReportsMonotonicProgress(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")
	for _, name := range []string{"1.jpg", "2.jpg", "3.mp4", "4.mov"} {
		writeFile(t, filepath.Join(src, name), name, may2022)
	}

	var dones []int
	var totals []int
	b := newBackup(t, backup.Options{
		Progress: func(done, total int, res backup.Result) {
			dones = append(dones, done)
			totals = append(totals, total)
		},
	})

	_, err := b.Run(ctx, src, filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, dones)
	assert.Equal(t, []int{4, 4, 4, 4}, totals)
}

func TestRunRootErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string) (src, dst string)
		wantErr error
	}{
		{
			name: "missing_source",
			setup: func(t *testing.T, dir string) (string, string) {
				return filepath.Join(dir, "nope"), filepath.Join(dir, "out")
			},
			wantErr: backup.ErrSourceRoot,
		},
		{
			name: "source_is_file",
			setup: func(t *testing.T, dir string) (string, string) {
				f := filepath.Join(dir, "file.jpg")
				writeFile(t, f, "x", may2022)
				return f, filepath.Join(dir, "out")
			},
			wantErr: backup.ErrSourceRoot,
		},
		{
			name: "destination_is_file",
			setup: func(t *testing.T, dir string) (string, string) {
				src := filepath.Join(dir, "src")
				writeFile(t, filepath.Join(src, "a.jpg"), "a", may2022)
				dst := filepath.Join(dir, "out")
				writeFile(t, dst, "x", may2022)
				return src, dst
			},
			wantErr: backup.ErrDestRoot,
		},
		{
			name: "empty_destination",
			setup: func(t *testing.T, dir string) (string, string) {
				return dir, ""
			},
			wantErr: backup.ErrDestRoot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dir := createTestEnv(t)
			src, dst := tt.setup(t, dir)

			summary, err := newBackup(t, backup.Options{}).Run(ctx, src, dst)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, summary)
		})
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")
	for _, name := range []string{"1.jpg", "2.jpg", "3.jpg"} {
		writeFile(t, filepath.Join(src, name), name, may2022)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b := newBackup(t, backup.Options{
		Progress: func(done, total int, res backup.Result) {
			if done == 1 {
				cancel()
			}
		},
	})

	summary, err := b.Run(ctx, src, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Processed())
	assert.Equal(t, 3, summary.Total)
}

func TestRunSkipsDestinationInsideSource(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "photos")
	writeFile(t, filepath.Join(src, "a.jpg"), "a", may2022)
	out := filepath.Join(src, "backup")
	writeFile(t, filepath.Join(out, "2020", "01", "old.jpg"), "old", may2022)

	b := newBackup(t, backup.Options{Recursive: true})
	plan, err := b.Prepare(ctx, src, out)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(src, "a.jpg")}, plan.Files)
}

func TestRunFollowsSymlinkedFiles(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")

	writeFile(t, filepath.Join(src, "plain.jpg"), "plain", may2022)
	target := filepath.Join(dir, "elsewhere", "real.jpg")
	writeFile(t, target, "linked bytes", time.Date(2019, time.August, 15, 12, 0, 0, 0, time.Local))
	if err := os.Symlink(target, filepath.Join(src, "linked.jpg")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "somedir.jpg"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(dir, "somedir.jpg"), filepath.Join(src, "dirlink.jpg")))

	summary, err := newBackup(t, backup.Options{Recursive: true}).Run(ctx, src, out)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total, "links to directories are not media files")
	assert.Equal(t, 2, summary.Copied)
	assert.Zero(t, summary.Failed)

	copied := filepath.Join(out, "2019", "08", "linked.jpg")
	info, err := os.Lstat(copied)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "the copy holds the target's bytes, not a link")
	got, err := os.ReadFile(copied)
	require.NoError(t, err)
	assert.Equal(t, "linked bytes", string(got))
	assert.FileExists(t, filepath.Join(out, "2022", "05", "plain.jpg"))
}

func TestRunReportsBrokenSymlink(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")

	writeFile(t, filepath.Join(src, "ok.jpg"), "ok", may2022)
	broken := filepath.Join(src, "gone.jpg")
	if err := os.Symlink(filepath.Join(dir, "missing.jpg"), broken); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	b := newBackup(t, backup.Options{Recursive: true})

	plan, err := b.Scan(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(src, "ok.jpg")}, plan.Files)
	require.Len(t, plan.Unreadable, 1)
	assert.Equal(t, broken, plan.Unreadable[0].Source)

	summary, err := b.Run(ctx, src, out)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Copied)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, summary.Total, summary.Processed())

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, broken, failures[0].Source)
	assert.ErrorIs(t, failures[0].Err, fs.ErrNotExist)
}

func TestRunRecordsUnreadableDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not restrict root")
	}
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")
	locked := filepath.Join(src, "locked")

	writeFile(t, filepath.Join(src, "a.jpg"), "a", may2022)
	writeFile(t, filepath.Join(locked, "hidden.jpg"), "hidden", may2022)
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	summary, err := newBackup(t, backup.Options{Recursive: true}).Run(ctx, src, filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Copied)
	assert.Equal(t, 1, summary.Failed)

	failures := summary.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, locked, failures[0].Source)
	assert.ErrorIs(t, failures[0].Err, fs.ErrPermission)
}

// fixedResolver returns the same time or error for every file
type fixedResolver struct {
	t   time.Time
	err error
}

func (r fixedResolver) Resolve(ctx context.Context, path string, info fs.FileInfo) (time.Time, error) {
	return r.t, r.err
}

func TestRunFailsFilesWithoutTimestamp(t *testing.T) {
	ctx, dir := createTestEnv(t)
	src := filepath.Join(dir, "src")
	out := filepath.Join(dir, "out")
	writeFile(t, filepath.Join(src, "a.jpg"), "a", may2022)

	b := newBackup(t, backup.Options{Resolver: fixedResolver{err: media.ErrNoTimestamp}})
	summary, err := b.Run(ctx, src, out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Results, 1)
	assert.ErrorIs(t, summary.Results[0].Err, media.ErrNoTimestamp)
	assert.Empty(t, summary.Results[0].Destination)
}

func TestSummaryString(t *testing.T) {
	s := &backup.Summary{Total: 3, Copied: 1, Skipped: 1, Failed: 1}
	assert.Contains(t, s.String(), "1 copied, 1 skipped, 1 failed of 3 files")
}

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

package media

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rwcarlsen/goexif/exif"
	"gitlab.com/tozd/go/errors"
)

// ErrNoTimestamp is returned when a file carries no usable modification time
var ErrNoTimestamp = errors.New("no usable timestamp")

// 📅 DateResolver decides which moment a media file belongs to
type DateResolver interface {
	Resolve(ctx context.Context, path string, info fs.FileInfo) (time.Time, error)
}

// ⏱️ ModTimeResolver uses the file's last-modified time
type ModTimeResolver struct{}

func (ModTimeResolver) Resolve(ctx context.Context, path string, info fs.FileInfo) (time.Time, error) {
	mt := info.ModTime()
	if mt.IsZero() {
		return time.Time{}, errors.Errorf("%w: %s", ErrNoTimestamp, path)
	}
	return mt.Local(), nil
}

// 📸 ExifResolver reads the EXIF capture date of images and falls back to
// the modification time for videos and images without a usable date.
type ExifResolver struct {
	Registry *Registry
}

func (r ExifResolver) Resolve(ctx context.Context, path string, info fs.FileInfo) (time.Time, error) {
	if r.Registry.Kind(path) == KindImage {
		t, err := exifDate(path)
		if err == nil {
			return t, nil
		}
		zerolog.Ctx(ctx).Debug().Str("path", path).Err(err).Msg("exif date unavailable, using modification time")
	}
	return ModTimeResolver{}.Resolve(ctx, path, info)
}

func exifDate(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, errors.Errorf("opening file: %w", err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, errors.Errorf("decoding exif: %w", err)
	}

	// DateTime prefers DateTimeOriginal and falls back to DateTime
	t, err := x.DateTime()
	if err != nil {
		return time.Time{}, errors.Errorf("reading exif date: %w", err)
	}
	if t.Year() < 1900 {
		return time.Time{}, errors.Errorf("implausible exif year %d", t.Year())
	}
	return t, nil
}

// 🗂️ DeriveDestination returns root/YYYY/MM/<base name of path>.
// Year and month come from resolver and are zero-padded.
func DeriveDestination(ctx context.Context, resolver DateResolver, path, root string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Errorf("reading file info: %w", err)
	}

	t, err := resolver.Resolve(ctx, path, info)
	if err != nil {
		return "", errors.Errorf("resolving date: %w", err)
	}

	return DestinationFor(root, path, t), nil
}

// DestinationFor is the pure path scheme used by DeriveDestination
func DestinationFor(root, path string, t time.Time) string {
	return filepath.Join(root, t.Format("2006"), t.Format("01"), filepath.Base(path))
}

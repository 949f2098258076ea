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
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrDestinationExists marks a file that was left alone because its target already exists
	ErrDestinationExists = errors.New("destination already exists")
	// ErrSourceRoot marks a missing or unusable source directory
	ErrSourceRoot = errors.New("invalid source root")
	// ErrDestRoot marks a destination root that cannot be used
	ErrDestRoot = errors.New("invalid destination root")
)

// 🎯 Outcome is the result of handling a single file
type Outcome int

const (
	OutcomeCopied Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCopied:
		return "copied"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// 📄 Result records what happened to one source file
type Result struct {
	Source      string
	Destination string // empty when the destination could not be derived
	Outcome     Outcome
	Err         error // reason for skipped and failed outcomes
}

// 📦 CopyFile copies src to dst byte for byte without ever replacing dst.
// Missing parent directories are created. An existing dst yields OutcomeSkipped
// and is not opened for writing. The copy keeps the source modification time.
func CopyFile(ctx context.Context, src, dst string) Result {
	logger := zerolog.Ctx(ctx)
	res := Result{Source: src, Destination: dst}

	if err := copyExclusive(src, dst); err != nil {
		if errors.Is(err, ErrDestinationExists) {
			res.Outcome = OutcomeSkipped
		} else {
			res.Outcome = OutcomeFailed
		}
		res.Err = err
		logger.Debug().Str("src", src).Str("dst", dst).Stringer("outcome", res.Outcome).Err(err).Msg("file not copied")
		return res
	}

	res.Outcome = OutcomeCopied
	logger.Debug().Str("src", src).Str("dst", dst).Msg("file copied")
	return res
}

func copyExclusive(src, dst string) (err error) {
	if _, err := os.Lstat(dst); err == nil {
		return errors.Errorf("%w: %s", ErrDestinationExists, dst)
	} else if !os.IsNotExist(err) {
		return errors.Errorf("checking destination: %w", err)
	}

	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errors.Errorf("reading source info: %w", err)
	}
	if !info.Mode().IsRegular() {
		return errors.Errorf("source is not a regular file: %s", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	// O_EXCL closes the gap between the Lstat above and creation
	destination, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if os.IsExist(err) {
			return errors.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return errors.Errorf("creating destination file: %w", err)
	}

	defer func() {
		if err != nil {
			destination.Close()
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(destination, source); err != nil {
		return errors.Errorf("copying file content: %w", err)
	}
	if err = destination.Sync(); err != nil {
		return errors.Errorf("syncing destination file: %w", err)
	}
	if err = destination.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}
	if err = os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return errors.Errorf("preserving modification time: %w", err)
	}

	return nil
}

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
	"fmt"

	"github.com/walteh/mediabackup/pkg/backup"
)

// 🎨 FileFormatter defines the interface for formatting status messages
type FileFormatter interface {
	// FormatOutcome formats the outcome of one file
	FormatOutcome(res backup.Result) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatSummary formats the totals of a run
	FormatSummary(s *backup.Summary) string
}

// 🎨 DefaultFileFormatter provides the default emoji formatting
type DefaultFileFormatter struct{}

// 🏭 NewDefaultFileFormatter creates a new default formatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

func (f *DefaultFileFormatter) FormatOutcome(res backup.Result) string {
	switch res.Outcome {
	case backup.OutcomeCopied:
		return fmt.Sprintf("✨ Copied %s", res.Source)
	case backup.OutcomeSkipped:
		return fmt.Sprintf("⏭️  Skipped %s", res.Source)
	default:
		if res.Err != nil {
			return fmt.Sprintf("❌ Failed %s: %v", res.Source, res.Err)
		}
		return fmt.Sprintf("❌ Failed %s", res.Source)
	}
}

func (f *DefaultFileFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

func (f *DefaultFileFormatter) FormatSummary(s *backup.Summary) string {
	if s.Total == 0 {
		return "📭 No media files found"
	}
	if s.Processed() < s.Total {
		return fmt.Sprintf("⚠️  Backup stopped after %d of %d files", s.Processed(), s.Total)
	}
	if s.Failed > 0 {
		return fmt.Sprintf("⚠️  Backup finished with errors: %d copied, %d skipped, %d failed", s.Copied, s.Skipped, s.Failed)
	}
	return fmt.Sprintf("🎉 Backup complete: %d copied, %d skipped", s.Copied, s.Skipped)
}

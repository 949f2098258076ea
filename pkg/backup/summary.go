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
	"fmt"
	"time"
)

// 📊 Summary aggregates the outcomes of one run
type Summary struct {
	Total    int
	Copied   int
	Skipped  int
	Failed   int
	Results  []Result
	Started  time.Time
	Finished time.Time
}

func (s *Summary) record(res Result) {
	s.Results = append(s.Results, res)
	switch res.Outcome {
	case OutcomeCopied:
		s.Copied++
	case OutcomeSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

// Processed returns how many files have an outcome
func (s *Summary) Processed() int {
	return len(s.Results)
}

// Failures returns the results that failed
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailed {
			out = append(out, r)
		}
	}
	return out
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d copied, %d skipped, %d failed of %d files in %s",
		s.Copied, s.Skipped, s.Failed, s.Total, s.Finished.Sub(s.Started).Round(time.Millisecond))
}

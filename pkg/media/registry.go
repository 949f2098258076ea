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
	"path/filepath"
	"sort"
	"strings"
)

// 🎞️ Kind classifies a supported file
type Kind int

const (
	KindUnsupported Kind = iota
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unsupported"
	}
}

// 📋 DefaultExtensions is the registry used when no configuration is available
var DefaultExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp",
	".mp4", ".mov", ".avi", ".mkv", ".flv", ".wmv",
	".webm", ".m4v", ".3gp",
}

// extensions that count as images; anything else in a registry is a video
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".heic": true,
	".tif":  true,
	".tiff": true,
}

// 📚 Registry is the immutable set of recognized media extensions.
// The zero value recognizes nothing.
type Registry struct {
	exts map[string]Kind
}

// 🏭 NewRegistry builds a registry from raw extension strings.
// Entries are trimmed, lowercased and given a leading dot; blanks are dropped.
func NewRegistry(exts []string) *Registry {
	r := &Registry{exts: make(map[string]Kind, len(exts))}
	for _, ext := range exts {
		ext = NormalizeExtension(ext)
		if ext == "" {
			continue
		}
		if imageExtensions[ext] {
			r.exts[ext] = KindImage
		} else {
			r.exts[ext] = KindVideo
		}
	}
	return r
}

// NormalizeExtension returns ext lowercased with a single leading dot
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// 🔍 IsSupported reports whether path carries a registered extension
func (r *Registry) IsSupported(path string) bool {
	return r.Kind(path) != KindUnsupported
}

// Kind returns the media kind of path, or KindUnsupported
func (r *Registry) Kind(path string) Kind {
	if r == nil {
		return KindUnsupported
	}
	return r.exts[strings.ToLower(filepath.Ext(path))]
}

// Extensions returns the registered extensions in sorted order
func (r *Registry) Extensions() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.exts))
	for ext := range r.exts {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered extensions
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.exts)
}

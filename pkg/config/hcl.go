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

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(filename)), ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "mediabackup.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclConfig struct {
		SupportedExtensions []string `hcl:"supported_extensions,optional"`
		MediaExtensions     []string `hcl:"media_extensions,optional"`
		Recursive           *bool    `hcl:"recursive,optional"`
		IgnorePatterns      []string `hcl:"ignore_patterns,optional"`
		DateSource          string   `hcl:"date_source,optional"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &Config{
		SupportedExtensions: hclCfg.SupportedExtensions,
		MediaExtensions:     hclCfg.MediaExtensions,
		Recursive:           hclCfg.Recursive,
		IgnorePatterns:      hclCfg.IgnorePatterns,
		DateSource:          DateSource(hclCfg.DateSource),
	}, nil
}

func marshalHCL(cfg *Config) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("supported_extensions", stringList(cfg.SupportedExtensions))
	body.SetAttributeValue("recursive", cty.BoolVal(cfg.IsRecursive()))
	if len(cfg.IgnorePatterns) > 0 {
		body.SetAttributeValue("ignore_patterns", stringList(cfg.IgnorePatterns))
	}
	body.SetAttributeValue("date_source", cty.StringVal(string(cfg.DateSource)))
	return f.Bytes()
}

func stringList(vals []string) cty.Value {
	if len(vals) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	out := make([]cty.Value, len(vals))
	for i, v := range vals {
		out[i] = cty.StringVal(v)
	}
	return cty.ListVal(out)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package project

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Encoding is a project file encoding.
type Encoding string

// Supported encodings.
const (
	EncodingYAML Encoding = "yaml"
	EncodingJSON Encoding = "json"
)

// EncodingFor picks the encoding from a file extension.
func EncodingFor(path string) (Encoding, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return EncodingYAML, nil
	case ".json":
		return EncodingJSON, nil
	default:
		return "", oops.Code(CodeInvalidProject).
			With("path", path).
			Errorf("unsupported project file extension %q", filepath.Ext(path))
	}
}

// Load reads, schema-checks, decodes and validates a project file.
func Load(path string) (*Project, error) {
	enc, err := EncodingFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, oops.Code(CodeInvalidProject).With("path", path).Wrapf(err, "read project")
	}
	p, err := Decode(data, enc, filepath.Base(path))
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return p, nil
}

// Decode parses data in the given encoding. The raw document is checked
// against the JSON Schema before it is decoded into a Project; nodes without
// an id are then given deterministic ULIDs and the result is validated.
func Decode(data []byte, enc Encoding, source string) (*Project, error) {
	doc, err := decodeGeneric(data, enc)
	if err != nil {
		return nil, oops.Code(CodeInvalidProject).With("source", source).Wrapf(err, "parse %s", source)
	}
	if err := ValidateSchema(doc); err != nil {
		return nil, ErrSchema(source, err)
	}

	var p Project
	switch enc {
	case EncodingJSON:
		err = json.Unmarshal(data, &p)
	default:
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return nil, oops.Code(CodeInvalidProject).With("source", source).Wrapf(err, "decode %s", source)
	}

	AssignIDs(&p, data)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func decodeGeneric(data []byte, enc Encoding) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, oops.Errorf("project document is empty")
	}
	if enc == EncodingJSON {
		return jschema.UnmarshalJSON(bytes.NewReader(data))
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

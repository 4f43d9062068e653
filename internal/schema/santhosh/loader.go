// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package santhosh

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrCannotLoadSchema = errors.New("cannot load schema")

// CompileSchema compiles an in-memory schema; url only identifies it in error messages.
func CompileSchema(url string, data []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: failed to add resource to json schema compiler: %w", ErrCannotLoadSchema, err)
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to compile json schema: %w", ErrCannotLoadSchema, err)
	}

	return schema, nil
}

// ToJSONValue converts a YAML decoded tree into the representation the validator expects.
func ToJSONValue(in any) (any, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("error while encoding document: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("error while decoding document: %w", err)
	}

	return out, nil
}

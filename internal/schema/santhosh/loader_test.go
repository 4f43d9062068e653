// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package santhosh_test

import (
	"errors"
	"os"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatium/gitopsctl/internal/schema/santhosh"
)

func loadSchema(path string) (*jsonschema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return santhosh.CompileSchema(path, data)
}

func TestCompileSchema(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc       string
		schemaPath string
		wantErr    bool
	}{
		{
			desc:       "broken schema",
			schemaPath: "testdata/broken.json",
			wantErr:    true,
		},
		{
			desc:       "wrong schema",
			schemaPath: "testdata/wrong.json",
			wantErr:    true,
		},
		{
			desc:       "minimal correct schema",
			schemaPath: "testdata/correct.json",
		},
	}
	for _, tC := range testCases {
		tC := tC

		t.Run(tC.desc, func(t *testing.T) {
			t.Parallel()

			s, err := loadSchema(tC.schemaPath)

			if !tC.wantErr && err != nil {
				t.Errorf("want no error, got %v", err)
			}

			if tC.wantErr && err == nil {
				t.Errorf("want error, got none")
			}

			if tC.wantErr && err != nil && !errors.Is(err, santhosh.ErrCannotLoadSchema) {
				t.Errorf("want error %v, got %v", santhosh.ErrCannotLoadSchema, err)
			}

			if !tC.wantErr && s == nil {
				t.Errorf("want schema, got nil")
			}
		})
	}
}

func TestValidate_Violations(t *testing.T) {
	t.Parallel()

	s, err := loadSchema("testdata/correct.json")
	require.NoError(t, err)

	doc, err := santhosh.ToJSONValue(map[string]any{
		"replicaCount": -1,
		"image":        map[string]any{},
	})
	require.NoError(t, err)

	err = s.Validate(doc)
	require.Error(t, err)

	v := santhosh.Violations(err)
	require.Len(t, v, 2)
	assert.Contains(t, v[0], "/image")
	assert.Contains(t, v[1], "/replicaCount")

	ok, err := santhosh.ToJSONValue(map[string]any{"replicaCount": 3, "image": map[string]any{"repository": "nginx"}})
	require.NoError(t, err)
	assert.NoError(t, s.Validate(ok))
}

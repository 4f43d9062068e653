// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package template_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatium/gitopsctl/internal/template"
	iox "github.com/creatium/gitopsctl/internal/x/io"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"skel/{{.service.name}}.md.tmpl": {Data: []byte("# {{ .service.name | upper }}\n")},
		"skel/values.yaml.tmpl":          {Data: []byte("team: {{ .service.team }}\n{{ toYaml .service.extra }}\n")},
		"skel/static.txt":                {Data: []byte("static\n")},
		"skel/empty.yaml.tmpl":           {Data: []byte("{{- if false }}x{{ end }}")},
		"skel/ignored/notes.txt":         {Data: []byte("ignored\n")},
	}
}

func TestNewModel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc    string
		root    string
		target  string
		wantErr error
	}{
		{desc: "missing root", root: "", target: "out", wantErr: template.ErrSourceNotSet},
		{desc: "missing target", root: "skel", target: "", wantErr: template.ErrTargetNotSet},
		{desc: "ok", root: "skel", target: "out"},
	}

	for _, tC := range testCases {
		tC := tC

		t.Run(tC.desc, func(t *testing.T) {
			t.Parallel()

			m, err := template.NewModel(testFS(), tC.root, tC.target, nil, template.Templates{})
			if tC.wantErr != nil {
				assert.ErrorIs(t, err, tC.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, template.DefaultSuffix, m.Templates.Suffix)
		})
	}
}

func TestModel_Generate(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "out")

	m, err := template.NewModel(testFS(), "skel", target, map[string]any{
		"service": map[string]any{
			"name":  "billing",
			"team":  "payments",
			"extra": map[string]any{"tier": "backend"},
		},
	}, template.Templates{ProcessFilename: true, Excludes: []string{"ignored/"}})
	require.NoError(t, err)

	written, err := m.Generate()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		filepath.Join(target, "billing.md"),
		filepath.Join(target, "static.txt"),
		filepath.Join(target, "values.yaml"),
	}, written)

	readme, err := os.ReadFile(filepath.Join(target, "billing.md"))
	require.NoError(t, err)
	assert.Equal(t, "# BILLING\n", string(readme))

	values, err := os.ReadFile(filepath.Join(target, "values.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "team: payments\ntier: backend\n", string(values))

	assert.NoFileExists(t, filepath.Join(target, "empty.yaml"))
	assert.NoDirExists(t, filepath.Join(target, "ignored"))
}

func TestModel_GenerateTargetNotEmpty(t *testing.T) {
	t.Parallel()

	target := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(target, "existing"), []byte("x"), 0o600))

	m, err := template.NewModel(testFS(), "skel", target, map[string]any{}, template.Templates{})
	require.NoError(t, err)

	_, err = m.Generate()
	assert.ErrorIs(t, err, iox.ErrDirNotEmpty)
}

func TestModel_GenerateMissingKey(t *testing.T) {
	t.Parallel()

	m, err := template.NewModel(testFS(), "skel", filepath.Join(t.TempDir(), "out"), map[string]any{
		"service": map[string]any{"name": "billing"},
	}, template.Templates{})
	require.NoError(t, err)

	_, err = m.Generate()
	assert.Error(t, err)
}

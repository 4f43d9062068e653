// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package mapper_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatium/gitopsctl/internal/template/mapper"
)

func TestMapper_MapDynamicValues(t *testing.T) {
	t.Setenv("TEST_MAPPER_TEAM", "agents")

	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "owner.txt"), []byte("platform@creatium.io\n"), 0o600)
	require.NoError(t, err)

	m := mapper.NewMapper(map[string]any{
		"service": map[string]any{
			"name":  "agent-backend",
			"team":  "env://TEST_MAPPER_TEAM",
			"owner": "file://owner.txt",
			"ports": []any{8080, "env://TEST_MAPPER_TEAM"},
		},
	}, dir)

	got, err := m.MapDynamicValues()
	require.NoError(t, err)

	svc, ok := got["service"].(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "agent-backend", svc["name"])
	assert.Equal(t, "agents", svc["team"])
	assert.Equal(t, "platform@creatium.io", svc["owner"])
	assert.Equal(t, []any{8080, "agents"}, svc["ports"])
}

func TestMapper_MissingFile(t *testing.T) {
	t.Parallel()

	m := mapper.NewMapper(map[string]any{"owner": "file://missing.txt"}, t.TempDir())

	_, err := m.MapDynamicValues()
	assert.Error(t, err)
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package cmd_test

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatium/gitopsctl/cmd"
	"github.com/creatium/gitopsctl/cmd/diff"
	"github.com/creatium/gitopsctl/cmd/validate"
	"github.com/creatium/gitopsctl/internal/topology"
)

const fixture = "../test/data/platform/platform.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()

	root := cmd.NewRootCmd()

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	_, err := root.ExecuteC()

	return out.String(), err
}

// copyPlatform copies the fixture repository into a temp dir and returns its platform file.
func copyPlatform(t *testing.T) string {
	t.Helper()

	src := filepath.Dir(fixture)
	dst := t.TempDir()

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			return os.MkdirAll(filepath.Join(dst, rel), 0o755)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		return os.WriteFile(filepath.Join(dst, rel), data, 0o600)
	})
	require.NoError(t, err)

	return filepath.Join(dst, filepath.Base(fixture))
}

func TestValidateAll(t *testing.T) {
	_, err := run(t, "--platform", fixture, "validate", "all")
	assert.NoError(t, err)
}

func TestValidateValues_Override(t *testing.T) {
	_, err := run(t, "--platform", fixture, "validate", "values", "--env", "production",
		"--set", "autoscaling.minReplicas=20")
	assert.ErrorIs(t, err, validate.ErrValidationFailed)
}

func TestRenderAll(t *testing.T) {
	out := t.TempDir()

	_, err := run(t, "--platform", fixture, "render", "all", "--outdir", out)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "production", "terraform", "main.tf"))
	assert.FileExists(t, filepath.Join(out, "production", "inference", "manifest.yaml"))
	assert.FileExists(t, filepath.Join(out, "argocd", "roots", "staging.yaml"))

	_, err = run(t, "--platform", fixture, "diff", "manifests", "--dir", out, "--exit-code")
	assert.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(out, "staging", "agent-backend", "manifest.yaml")))

	_, err = run(t, "--platform", fixture, "diff", "manifests", "--dir", out, "--exit-code")
	assert.ErrorIs(t, err, diff.ErrOutOfDate)
}

func TestDiffTopology_Against(t *testing.T) {
	against := filepath.Join(t.TempDir(), "cluster.yaml")

	content, err := os.ReadFile("../test/data/platform/environments/production/cluster.yaml")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(against, content, 0o600))

	out, err := run(t, "--platform", fixture, "diff", "topology", "--env", "production", "--against", against)
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = run(t, "diff", "topology", "--platform", fixture)
	assert.ErrorIs(t, err, diff.ErrEnvRequired)
}

func TestInvalidTopologyIsNeitherRenderedNorRecorded(t *testing.T) {
	platformFile := copyPlatform(t)
	clusterFile := filepath.Join(filepath.Dir(platformFile), "environments", "staging", "cluster.yaml")

	content, err := os.ReadFile(clusterFile)
	require.NoError(t, err)

	broken := strings.Replace(string(content), "minNodes: 1\n      maxNodes: 3", "minNodes: 5\n      maxNodes: 2", 1)
	require.NotEqual(t, string(content), broken)
	require.NoError(t, os.WriteFile(clusterFile, []byte(broken), 0o600))

	out := t.TempDir()

	_, err = run(t, "--platform", platformFile, "render", "terraform", "--env", "staging", "--outdir", out)
	require.ErrorIs(t, err, topology.ErrAutoscaleBounds)
	assert.NoFileExists(t, filepath.Join(out, "staging", "terraform", "main.tf"))

	_, err = run(t, "--platform", platformFile, "state", "push", "--env", "staging", "--revision", "abc123")
	assert.ErrorIs(t, err, topology.ErrAutoscaleBounds)
}

func TestGraph(t *testing.T) {
	out, err := run(t, "--platform", fixture, "graph", "--env", "production", "--format", "mermaid")
	require.NoError(t, err)

	assert.Contains(t, out, "inference")
	assert.Contains(t, out, "agent-backend")

	_, err = run(t, "--platform", fixture, "graph")
	assert.ErrorIs(t, err, cmd.ErrEnvRequired)
}

func TestPlanCheck(t *testing.T) {
	_, err := run(t, "plan", "check", "--plan", "../internal/terraform/testdata/plan-noop.json", "--expect-noop")
	assert.NoError(t, err)

	out, err := run(t, "plan", "check", "--plan", "../internal/terraform/testdata/plan-changes.json")
	assert.Error(t, err)
	assert.Contains(t, out, "Plan: ")

	_, err = run(t, "plan", "check", "--plan", "../internal/terraform/testdata/plan-changes.json", "--allow-destroy")
	assert.NoError(t, err)
}

func TestScaffoldService(t *testing.T) {
	root := t.TempDir()

	_, err := run(t, "scaffold", "service", "billing", "--team", "payments", "--root", root)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "services", "billing", "values.yaml"))
	assert.FileExists(t, filepath.Join(root, "services", "billing", "README.md"))
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "version: ")
	assert.Contains(t, out, "workloadChart: ")
}

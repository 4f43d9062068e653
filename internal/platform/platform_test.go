// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package platform_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatium/gitopsctl/internal/platform"
	"github.com/creatium/gitopsctl/internal/topology"
	netx "github.com/creatium/gitopsctl/internal/x/net"
)

const fixture = "../../test/data/platform/platform.yaml"

func loadPlatform(t *testing.T) *platform.Platform {
	t.Helper()

	p, err := platform.Load(fixture)
	require.NoError(t, err)

	return p
}

func TestLoad(t *testing.T) {
	t.Parallel()

	p := loadPlatform(t)

	assert.Equal(t, "main", p.PrimaryBranch)
	assert.Equal(t, platform.DefaultRenderedDir, p.RenderedDir)

	prod, err := p.Environment("production")
	require.NoError(t, err)
	assert.Equal(t, "main", prod.Revision)
	assert.Equal(t, "https://kubernetes.default.svc", prod.Server)

	staging, err := p.Environment("staging")
	require.NoError(t, err)
	assert.Equal(t, "develop", staging.Revision)

	_, err = p.Environment("qa")
	assert.ErrorIs(t, err, platform.ErrUnknownEnvironment)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc    string
		content string
		wantErr error
	}{
		{
			desc:    "missing repo url",
			content: "environments: [{name: production}]\n",
			wantErr: platform.ErrInvalidPlatform,
		},
		{
			desc:    "reserved environment name",
			content: "repoURL: https://example.com/r.git\nenvironments: [{name: argocd}]\n",
			wantErr: platform.ErrReservedName,
		},
		{
			desc: "reserved service name",
			content: "repoURL: https://example.com/r.git\nenvironments: [{name: production}]\n" +
				"services: [{name: terraform, namespace: tf}]\n",
			wantErr: platform.ErrReservedName,
		},
		{
			desc: "service in unknown environment",
			content: "repoURL: https://example.com/r.git\nenvironments: [{name: production}]\n" +
				"services: [{name: api, namespace: api, environments: [qa]}]\n",
			wantErr: platform.ErrUnknownEnvironment,
		},
		{
			desc: "duplicate service",
			content: "repoURL: https://example.com/r.git\nenvironments: [{name: production}]\n" +
				"services: [{name: api, namespace: api}, {name: api, namespace: api2}]\n",
			wantErr: platform.ErrDuplicateName,
		},
	}

	for _, tC := range testCases {
		tC := tC

		t.Run(tC.desc, func(t *testing.T) {
			t.Parallel()

			file := filepath.Join(t.TempDir(), platform.FileName)
			require.NoError(t, os.WriteFile(file, []byte(tC.content), 0o600))

			_, err := platform.Load(file)
			assert.ErrorIs(t, err, tC.wantErr)
		})
	}
}

func TestPaths(t *testing.T) {
	t.Parallel()

	p := loadPlatform(t)

	assert.Equal(t, filepath.Join(p.Root, "environments", "production", "cluster.yaml"), p.ClusterFile("production"))
	assert.Equal(t, filepath.Join(p.Root, "services", "agent-backend", "values-production.yaml"),
		p.ServiceEnvValuesFile("agent-backend", "production"))
	assert.Equal(t, "rendered/production/agent-backend", p.ManifestPath("production", "agent-backend"))
	assert.Equal(t, "rendered/argocd/production", p.ApplicationsPath("production"))
}

func TestMappings(t *testing.T) {
	t.Parallel()

	p := loadPlatform(t)

	m := p.Mappings()
	require.Len(t, m, 3)

	assert.Equal(t, "agent-backend-production", m[0].Name)
	assert.Equal(t, "inference-production", m[1].Name)
	assert.Equal(t, "agent-backend-staging", m[2].Name)
	assert.True(t, m[0].Production)
	assert.Equal(t, "develop", m[2].Revision)
}

func TestRenderer_Values(t *testing.T) {
	t.Parallel()

	p := loadPlatform(t)
	r := platform.NewRenderer(p, netx.NewGoGetterClient())

	svc, err := p.Service("agent-backend")
	require.NoError(t, err)

	prod, err := p.Environment("production")
	require.NoError(t, err)

	v, err := r.Values(svc, prod)
	require.NoError(t, err)

	assert.Equal(t, "production", v.String("tier"))
	assert.Equal(t, "cc-prod", v.String("costCenter"))
	assert.Equal(t, "agents", v.String("team"))
	assert.Equal(t, "api.creatium.io", v.String("ingress.host"))
	assert.True(t, v.Bool("ingress.enabled"))
	assert.True(t, v.Bool("autoscaling.enabled"))
	assert.Equal(t, 10, v.Int("autoscaling.maxReplicas"))

	staging, err := p.Environment("staging")
	require.NoError(t, err)

	v, err = r.Values(svc, staging)
	require.NoError(t, err)

	assert.Equal(t, "api.staging.creatium.io", v.String("ingress.host"))
	assert.False(t, v.Bool("autoscaling.enabled"))
	assert.Equal(t, "Always", v.String("image.pullPolicy"))
}

func TestRenderer_Release(t *testing.T) {
	t.Parallel()

	p := loadPlatform(t)
	r := platform.NewRenderer(p, netx.NewGoGetterClient())

	svc, err := p.Service("agent-backend")
	require.NoError(t, err)

	prod, err := p.Environment("production")
	require.NoError(t, err)

	m, err := r.Manifest(svc, prod)
	require.NoError(t, err)

	d := m.Find("Deployment")
	require.NotNil(t, d)
	assert.Equal(t, "creatium-us-agent-backend", d.GetName())
}

func TestRenderer_Validate(t *testing.T) {
	t.Parallel()

	r := platform.NewRenderer(loadPlatform(t), netx.NewGoGetterClient())

	assert.NoError(t, r.Validate())
}

func TestRenderer_ValidateUnschedulable(t *testing.T) {
	t.Parallel()

	p := loadPlatform(t)
	p.Services[1].Environments = nil

	err := platform.NewRenderer(p, netx.NewGoGetterClient()).Validate()
	assert.ErrorIs(t, err, platform.ErrUnschedulable)
}

func TestRenderer_RenderAll(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	r := platform.NewRenderer(loadPlatform(t), netx.NewGoGetterClient())

	files, err := r.RenderAll(out)
	require.NoError(t, err)

	for _, f := range []string{
		"production/terraform/main.tf",
		"production/agent-backend/manifest.yaml",
		"production/inference/manifest.yaml",
		"staging/terraform/main.tf",
		"staging/agent-backend/manifest.yaml",
		"argocd/production/agent-backend-production.yaml",
		"argocd/production/inference-production.yaml",
		"argocd/staging/agent-backend-staging.yaml",
		"argocd/roots/production.yaml",
		"argocd/roots/staging.yaml",
	} {
		assert.Contains(t, files, filepath.Join(out, f))
		assert.FileExists(t, filepath.Join(out, f))
	}

	assert.NoFileExists(t, filepath.Join(out, "staging", "inference", "manifest.yaml"))

	first, err := os.ReadFile(filepath.Join(out, "production/agent-backend/manifest.yaml"))
	require.NoError(t, err)

	_, err = platform.NewRenderer(loadPlatform(t), netx.NewGoGetterClient()).RenderAll(out)
	require.NoError(t, err)

	again, err := os.ReadFile(filepath.Join(out, "production/agent-backend/manifest.yaml"))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(again))
}

func TestRenderer_RenderArtifact(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		artifact string
		want     []string
		wantErr  error
	}{
		{
			desc:     "terraform only",
			artifact: "terraform",
			want:     []string{"staging/terraform/main.tf"},
		},
		{
			desc:     "manifests only",
			artifact: "manifests",
			want:     []string{"staging/agent-backend/manifest.yaml"},
		},
		{
			desc:     "argocd only",
			artifact: "argocd",
			want:     []string{"argocd/staging/agent-backend-staging.yaml", "argocd/roots/staging.yaml"},
		},
		{
			desc:     "unknown",
			artifact: "helm",
			wantErr:  platform.ErrUnknownArtifact,
		},
	}

	for _, tC := range testCases {
		tC := tC

		t.Run(tC.desc, func(t *testing.T) {
			t.Parallel()

			artifact, err := platform.ParseArtifact(tC.artifact)
			if tC.wantErr != nil {
				assert.ErrorIs(t, err, tC.wantErr)

				return
			}

			require.NoError(t, err)

			p := loadPlatform(t)
			env, err := p.Environment("staging")
			require.NoError(t, err)

			out := t.TempDir()

			files, err := platform.NewRenderer(p, netx.NewGoGetterClient()).Render(out, artifact, env)
			require.NoError(t, err)

			want := make([]string, 0, len(tC.want))
			for _, f := range tC.want {
				want = append(want, filepath.Join(out, f))
			}

			assert.ElementsMatch(t, want, files)
		})
	}
}

func TestRenderer_RenderInvalidTopology(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	file := filepath.Join(root, platform.FileName)
	require.NoError(t, os.WriteFile(file, []byte("repoURL: https://github.com/creatium/infra.git\n"+
		"environments: [{name: staging}]\n"), 0o600))

	cluster := `cluster:
  name: creatium-staging
  region: nyc3
  version: 1.31.1-do.4
nodePools:
  - name: system
    class: system
    size: s-2vcpu-4gb
    nodeCount: 0
  - name: general
    class: general
    size: s-2vcpu-4gb
    autoscale:
      enabled: true
      minNodes: 5
      maxNodes: 2
  - name: general
    class: general
    size: s-4vcpu-8gb
    nodeCount: 1
`
	dir := filepath.Join(root, "environments", "staging")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cluster.yaml"), []byte(cluster), 0o600))

	p, err := platform.Load(file)
	require.NoError(t, err)

	env, err := p.Environment("staging")
	require.NoError(t, err)

	out := t.TempDir()

	files, err := platform.NewRenderer(p, netx.NewGoGetterClient()).Render(out, platform.ArtifactTerraform, env)
	require.ErrorIs(t, err, topology.ErrAutoscaleBounds)
	assert.ErrorIs(t, err, topology.ErrDuplicatePool)
	assert.Empty(t, files)

	_, err = os.Stat(filepath.Join(out, "staging", "terraform", "main.tf"))
	assert.True(t, os.IsNotExist(err))
}

func TestRenderer_Placement(t *testing.T) {
	t.Parallel()

	p := loadPlatform(t)
	r := platform.NewRenderer(p, netx.NewGoGetterClient())

	svc, err := p.Service("inference")
	require.NoError(t, err)

	prod, err := p.Environment("production")
	require.NoError(t, err)

	pl, err := r.Placement(svc, prod)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{topology.PoolClassLabel: "compute"}, pl.NodeSelector)
	require.Len(t, pl.Tolerations, 1)
	assert.Equal(t, topology.PoolClassLabel, pl.Tolerations[0].Key)
}

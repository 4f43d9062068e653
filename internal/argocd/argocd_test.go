// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package argocd_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/creatium/gitopsctl/internal/argocd"
)

const repoURL = "https://github.com/creatium/infra.git"

func mapping(name, path, ns string) argocd.Mapping {
	return argocd.Mapping{
		Name:        name,
		Environment: "production",
		Path:        path,
		Namespace:   ns,
		Server:      argocd.InClusterServer,
		Revision:    "main",
		Production:  true,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	app := argocd.New(repoURL, mapping("agent-backend-production", "rendered/production/agent-backend", "agents"))

	out, err := app.YAML()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, sigsyaml.Unmarshal(out, &doc))

	assert.Equal(t, argocd.APIVersion, doc["apiVersion"])
	assert.Equal(t, argocd.Kind, doc["kind"])

	spec := doc["spec"].(map[string]any)
	assert.Equal(t, "rendered/production/agent-backend", spec["source"].(map[string]any)["path"])
	assert.Equal(t, "main", spec["source"].(map[string]any)["targetRevision"])
	assert.Equal(t, "agents", spec["destination"].(map[string]any)["namespace"])

	sync := spec["syncPolicy"].(map[string]any)
	assert.Equal(t, map[string]any{"prune": true, "selfHeal": true}, sync["automated"])
	assert.Equal(t, []any{"CreateNamespace=true"}, sync["syncOptions"])
}

func TestRoot(t *testing.T) {
	t.Parallel()

	app := argocd.Root(repoURL, mapping("production-root", "rendered/argocd/production", "argocd"))

	assert.Equal(t, argocd.Namespace, app.Spec.Destination.Namespace)
	require.NotNil(t, app.Spec.Source.Directory)
	assert.True(t, app.Spec.Source.Directory.Recurse)
	assert.Empty(t, app.Spec.SyncPolicy.SyncOptions)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	staging := mapping("agent-backend-staging", "rendered/staging/agent-backend", "agents")
	staging.Environment = "staging"
	staging.Production = false
	staging.Revision = "develop"

	testCases := []struct {
		desc     string
		mappings []argocd.Mapping
		wantErr  error
	}{
		{
			desc: "valid",
			mappings: []argocd.Mapping{
				mapping("agent-backend-production", "rendered/production/agent-backend", "agents"),
				staging,
			},
		},
		{
			desc: "duplicate path",
			mappings: []argocd.Mapping{
				mapping("a", "rendered/production/agent-backend", "agents"),
				mapping("b", "rendered/production/agent-backend", "agents-2"),
			},
			wantErr: argocd.ErrDuplicatePath,
		},
		{
			desc: "duplicate target",
			mappings: []argocd.Mapping{
				mapping("a", "rendered/production/a", "agents"),
				mapping("a", "rendered/production/b", "agents"),
			},
			wantErr: argocd.ErrDuplicateTarget,
		},
		{
			desc: "production off the primary branch",
			mappings: []argocd.Mapping{
				func() argocd.Mapping {
					m := mapping("a", "rendered/production/a", "agents")
					m.Revision = "feature/x"

					return m
				}(),
			},
			wantErr: argocd.ErrProductionRevision,
		},
		{
			desc:     "invalid namespace",
			mappings: []argocd.Mapping{mapping("a", "rendered/production/a", "Agents_NS")},
			wantErr:  argocd.ErrInvalidMapping,
		},
	}

	for _, tC := range testCases {
		tC := tC

		t.Run(tC.desc, func(t *testing.T) {
			t.Parallel()

			err := argocd.Validate(tC.mappings, "main")
			if tC.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tC.wantErr)
		})
	}
}

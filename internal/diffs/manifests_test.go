// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package diffs_test

import (
	"path/filepath"
	"strings"
	"testing"

	r3diff "github.com/r3labs/diff/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatium/gitopsctl/internal/diffs"
	iox "github.com/creatium/gitopsctl/internal/x/io"
)

const deployment = `apiVersion: apps/v1
kind: Deployment
metadata:
  name: creatium-prod-agent-backend
spec:
  replicas: %REPLICAS%
  selector:
    matchLabels:
      app.kubernetes.io/name: %SELECTOR%
---
apiVersion: v1
kind: Service
metadata:
  name: creatium-prod-agent-backend
spec:
  type: ClusterIP
`

func writeManifest(t *testing.T, dir, rel, replicas, selector string) {
	t.Helper()

	content := strings.NewReplacer("%REPLICAS%", replicas, "%SELECTOR%", selector).Replace(deployment)

	require.NoError(t, iox.WriteFile(filepath.Join(dir, rel), []byte(content)))
}

func TestManifestDocuments(t *testing.T) {
	t.Parallel()

	docs, err := diffs.ManifestDocuments([]byte("kind: ServiceAccount\nmetadata:\n  name: a\n---\n# empty\n---\nkind: Service\nmetadata:\n  name: a\n"))
	require.NoError(t, err)

	assert.Len(t, docs, 2)
	assert.Contains(t, docs, "ServiceAccount/a")
	assert.Contains(t, docs, "Service/a")

	_, err = diffs.ManifestDocuments([]byte("kind: [unterminated"))
	assert.Error(t, err)
}

func TestManifestChecker(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc           string
		replicas       string
		selector       string
		extra          bool
		wantChanges    int
		wantViolations int
		wantType       string
		wantAllCreates bool
	}{
		{
			desc:     "unchanged",
			replicas: "2",
			selector: "agent-backend",
		},
		{
			desc:        "replicas changed",
			replicas:    "3",
			selector:    "agent-backend",
			wantChanges: 1,
			wantType:    r3diff.UPDATE,
		},
		{
			desc:           "selector changed",
			replicas:       "2",
			selector:       "agents",
			wantChanges:    1,
			wantViolations: 1,
			wantType:       r3diff.UPDATE,
		},
		{
			desc:           "new file",
			replicas:       "2",
			selector:       "agent-backend",
			extra:          true,
			wantAllCreates: true,
		},
	}

	for _, tC := range testCases {
		tC := tC

		t.Run(tC.desc, func(t *testing.T) {
			t.Parallel()

			current := t.TempDir()
			desired := t.TempDir()

			writeManifest(t, current, "production/agent-backend/manifest.yaml", "2", "agent-backend")
			writeManifest(t, desired, "production/agent-backend/manifest.yaml", tC.replicas, tC.selector)

			if tC.extra {
				writeManifest(t, desired, "staging/agent-backend/manifest.yaml", "1", "agent-backend")
			}

			checker, err := diffs.NewManifestChecker(current, desired)
			require.NoError(t, err)

			changelog, err := checker.GenerateDiff()
			require.NoError(t, err)

			if tC.wantAllCreates {
				require.NotEmpty(t, changelog)

				for _, c := range changelog {
					assert.Equal(t, r3diff.CREATE, c.Type)
				}

				return
			}

			assert.Len(t, changelog, tC.wantChanges, checker.DiffToString(changelog))
			assert.Len(t, checker.AssertImmutableViolations(changelog, diffs.ManifestImmutablePaths()), tC.wantViolations)

			if tC.wantType != "" {
				assert.Equal(t, tC.wantType, changelog[0].Type)
			}
		})
	}
}

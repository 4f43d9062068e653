// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package verify_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/creatium/gitopsctl/internal/topology"
	"github.com/creatium/gitopsctl/internal/verify"
)

func node(name, pool string, taints ...corev1.Taint) runtime.Object {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{
			Name:   name,
			Labels: map[string]string{verify.DOKSPoolLabel: pool},
		},
		Spec: corev1.NodeSpec{Taints: taints},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{{Type: corev1.NodeReady, Status: corev1.ConditionTrue}},
		},
	}
}

func nodes(pool string, n int, taints ...corev1.Taint) []runtime.Object {
	out := make([]runtime.Object, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, node(fmt.Sprintf("%s-%d", pool, i), pool, taints...))
	}

	return out
}

func TestNodes(t *testing.T) {
	t.Parallel()

	env, err := topology.Load("../topology/testdata/production/cluster.yaml")
	require.NoError(t, err)

	computeTaint := topology.ComputeTaint().Core()

	testCases := []struct {
		desc          string
		objects       []runtime.Object
		wantErr       bool
		wantUnmanaged []string
	}{
		{
			desc: "within bounds",
			objects: append(append(append(
				nodes("system", 2),
				nodes("general", 4)...),
				nodes("compute", 1, computeTaint)...),
				node("legacy-0", "legacy")),
			wantUnmanaged: []string{"legacy-0"},
		},
		{
			desc: "fixed pool drifted",
			objects: append(append(
				nodes("system", 3),
				nodes("general", 2)...),
				nodes("compute", 1, computeTaint)...),
			wantErr: true,
		},
		{
			desc: "autoscaled pool above max",
			objects: append(append(
				nodes("system", 2),
				nodes("general", 7)...),
				nodes("compute", 1, computeTaint)...),
			wantErr: true,
		},
		{
			desc: "compute node without taint",
			objects: append(append(
				nodes("system", 2),
				nodes("general", 2)...),
				nodes("compute", 1)...),
			wantErr: true,
		},
	}

	for _, tC := range testCases {
		tC := tC

		t.Run(tC.desc, func(t *testing.T) {
			t.Parallel()

			report, err := verify.Nodes(context.Background(), fake.NewSimpleClientset(tC.objects...), env)
			require.NoError(t, err)

			if tC.wantErr {
				assert.Error(t, report.Err())
			} else {
				assert.NoError(t, report.Err())
			}

			assert.Equal(t, tC.wantUnmanaged, report.Unmanaged)
			assert.Len(t, report.Pools, len(env.NodePools))
		})
	}
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package state_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/creatium/gitopsctl/internal/state"
	"github.com/creatium/gitopsctl/internal/topology"
	kubex "github.com/creatium/gitopsctl/internal/x/kube"
)

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cs := fake.NewSimpleClientset()
	store := state.NewStore(cs)

	env, err := topology.Load("../topology/testdata/production/cluster.yaml")
	require.NoError(t, err)

	rec, err := store.StoreTopology(ctx, env, "3f2c1ab")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)

	secret, err := cs.CoreV1().Secrets(state.Namespace).Get(ctx, "gitopsctl-topology-production", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "gitopsctl", secret.Labels[state.ManagedByLabel])

	got, err := store.GetTopology(ctx, "production")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(env, got))

	stored, err := store.GetRecord(ctx, "production")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)
	assert.Equal(t, "3f2c1ab", stored.Revision)
	assert.Equal(t, rec.AppliedAt.Unix(), stored.AppliedAt.Unix())
}

func TestStore_Missing(t *testing.T) {
	t.Parallel()

	_, err := state.NewStore(fake.NewSimpleClientset()).GetTopology(context.Background(), "staging")
	assert.ErrorIs(t, err, kubex.ErrSecretNotFound)
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package kubex_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes/fake"

	kubex "github.com/creatium/gitopsctl/internal/x/kube"
)

func TestApplySecret(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cs := fake.NewSimpleClientset()

	s := kubex.NewSecret("topology", "kube-system", nil, map[string][]byte{"data": []byte("v1")})
	require.NoError(t, kubex.ApplySecret(ctx, cs, s))

	got, err := kubex.SecretData(ctx, cs, "kube-system", "topology", "data")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	s = kubex.NewSecret("topology", "kube-system", nil, map[string][]byte{"data": []byte("v2")})
	require.NoError(t, kubex.ApplySecret(ctx, cs, s))

	got, err = kubex.SecretData(ctx, cs, "kube-system", "topology", "data")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestSecretData_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cs := fake.NewSimpleClientset()

	_, err := kubex.SecretData(ctx, cs, "kube-system", "missing", "data")
	assert.ErrorIs(t, err, kubex.ErrSecretNotFound)

	require.NoError(t, kubex.ApplySecret(ctx, cs, kubex.NewSecret("s", "kube-system", nil, map[string][]byte{"a": nil})))

	_, err = kubex.SecretData(ctx, cs, "kube-system", "s", "data")
	assert.ErrorIs(t, err, kubex.ErrSecretKey)
}

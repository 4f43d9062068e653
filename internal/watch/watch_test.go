// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatium/gitopsctl/internal/watch"
)

func TestWatcher_Run(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	rendered := filepath.Join(root, "rendered")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "services", "billing"), 0o755))
	require.NoError(t, os.MkdirAll(rendered, 0o755))

	w := &watch.Watcher{Root: root, Ignore: []string{rendered}, Debounce: 50 * time.Millisecond}

	var calls atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- w.Run(ctx, func() error {
			calls.Add(1)

			return nil
		})
	}()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Not YAML, no callback.
	require.NoError(t, os.WriteFile(filepath.Join(root, "services", "billing", "README.md"), []byte("x"), 0o600))
	// Ignored directory, no callback.
	require.NoError(t, os.WriteFile(filepath.Join(rendered, "manifest.yaml"), []byte("x: 1"), 0o600))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	// A burst of writes is debounced into a single callback.
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "services", "billing", "values.yaml"), []byte("team: a"), 0o600))
	}

	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

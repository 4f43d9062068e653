// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package git_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatium/gitopsctl/internal/git"
	execx "github.com/creatium/gitopsctl/internal/x/exec"
)

func TestHelperProcess(t *testing.T) {
	t.Parallel()

	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	if os.Getenv("FAKE_GIT_FAIL") == "1" {
		fmt.Fprintln(os.Stderr, "fatal: not a git repository")
		os.Exit(128)
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}

	if len(args) > 3 && args[3] == "--abbrev-ref" {
		fmt.Println("main")
	} else {
		fmt.Println("4f2c1e9a7b3d5c6e8f0a1b2c3d4e5f6a7b8c9d0e")
	}

	os.Exit(0)
}

func TestRunner(t *testing.T) {
	t.Parallel()

	r := git.NewRunner(execx.NewFakeExecutor(), t.TempDir())

	head, err := r.Head()
	require.NoError(t, err)
	assert.Equal(t, "4f2c1e9a7b3d5c6e8f0a1b2c3d4e5f6a7b8c9d0e", head)

	branch, err := r.Branch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestRunner_NotARepository(t *testing.T) {
	t.Parallel()

	r := git.NewRunner(execx.NewFakeExecutor("FAKE_GIT_FAIL=1"), t.TempDir())

	_, err := r.Head()
	assert.ErrorIs(t, err, git.ErrNotARepository)
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package terraform_test

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatium/gitopsctl/internal/terraform"
	execx "github.com/creatium/gitopsctl/internal/x/exec"
)

func TestHelperProcess(t *testing.T) {
	t.Parallel()

	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}

	if len(args) < 3 {
		os.Exit(1)
	}

	switch args[2] {
	case "init":
		os.Exit(0)

	case "plan":
		if os.Getenv("FAKE_PLAN_HANG") == "1" {
			time.Sleep(time.Minute)
		}

		code, err := strconv.Atoi(os.Getenv("FAKE_PLAN_EXIT_CODE"))
		if err != nil {
			code = 0
		}

		os.Exit(code)

	case "show":
		data, err := os.ReadFile(os.Getenv("FAKE_PLAN_JSON"))
		if err != nil {
			os.Exit(1)
		}

		fmt.Fprint(os.Stdout, string(data))
		os.Exit(0)
	}

	os.Exit(1)
}

func TestRunner_Plan(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc        string
		exitCode    int
		wantChanges bool
		wantErr     bool
	}{
		{desc: "no changes", exitCode: 0},
		{desc: "changes", exitCode: 2, wantChanges: true},
		{desc: "failure", exitCode: 1, wantErr: true},
	}

	for _, tC := range testCases {
		tC := tC

		t.Run(tC.desc, func(t *testing.T) {
			t.Parallel()

			r := terraform.NewRunner(
				execx.NewFakeExecutor("FAKE_PLAN_EXIT_CODE="+strconv.Itoa(tC.exitCode)),
				terraform.Paths{WorkDir: t.TempDir()},
			)

			require.NoError(t, r.Init())

			changes, err := r.Plan()
			if tC.wantErr {
				assert.ErrorIs(t, err, terraform.ErrPlanFailed)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tC.wantChanges, changes)
		})
	}
}

func TestRunner_ShowPlan(t *testing.T) {
	t.Parallel()

	r := terraform.NewRunner(
		execx.NewFakeExecutor("FAKE_PLAN_JSON=testdata/plan-changes.json"),
		terraform.Paths{},
	)

	plan, err := r.ShowPlan()
	require.NoError(t, err)
	assert.Len(t, plan.ResourceChanges, 3)
	assert.Equal(t, "terraform", r.CmdPath())
}

func TestRunner_Stop(t *testing.T) {
	t.Parallel()

	r := terraform.NewRunner(execx.NewFakeExecutor("FAKE_PLAN_HANG=1"), terraform.Paths{WorkDir: t.TempDir()})

	errCh := make(chan error, 1)

	go func() {
		_, err := r.Plan()
		errCh <- err
	}()

	var err error

	require.Eventually(t, func() bool {
		assert.NoError(t, r.Stop())

		select {
		case err = <-errCh:
			return true

		default:
			return false
		}
	}, 20*time.Second, 50*time.Millisecond)

	assert.True(t, errors.Is(err, terraform.ErrPlanFailed) || errors.Is(err, terraform.ErrRunnerStopped), err)

	assert.ErrorIs(t, r.Init(), terraform.ErrRunnerStopped)
}

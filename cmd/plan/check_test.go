// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatium/gitopsctl/internal/terraform"
	execx "github.com/creatium/gitopsctl/internal/x/exec"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		desc     string
		plan     string
		wantNoop bool
		wantErr  error
	}{
		{desc: "json noop", plan: "../../internal/terraform/testdata/plan-noop.json", wantNoop: true},
		{desc: "json changes", plan: "../../internal/terraform/testdata/plan-changes.json"},
		{desc: "text changes", plan: "../../internal/terraform/testdata/plan.txt"},
		{desc: "colored text changes", plan: "../../internal/terraform/testdata/plan-colored.txt"},
		{desc: "text error log", plan: "../../internal/terraform/testdata/plan-error.txt", wantErr: terraform.ErrPlanFailed},
		{desc: "no source", wantErr: ErrPlanSourceReq},
	}

	for _, tC := range testCases {
		tC := tC

		t.Run(tC.desc, func(t *testing.T) {
			t.Parallel()

			s, err := summarize(context.Background(), tC.plan, "", "terraform")
			if tC.wantErr != nil {
				assert.ErrorIs(t, err, tC.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tC.wantNoop, s.Noop())
		})
	}
}

func TestStopOnCancel(t *testing.T) {
	t.Parallel()

	runner := terraform.NewRunner(execx.NewFakeExecutor(), terraform.Paths{})

	done := make(chan struct{})
	close(done)

	stopOnCancel(context.Background(), done, runner)
	assert.NotErrorIs(t, runner.Init(), terraform.ErrRunnerStopped)

	runner = terraform.NewRunner(execx.NewFakeExecutor(), terraform.Paths{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stopOnCancel(ctx, make(chan struct{}), runner)
	assert.ErrorIs(t, runner.Init(), terraform.ErrRunnerStopped)
}

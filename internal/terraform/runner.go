// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package terraform

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	tfjson "github.com/hashicorp/terraform-json"

	execx "github.com/creatium/gitopsctl/internal/x/exec"
)

const (
	PlanFile = "gitopsctl.tfplan"

	// Exit code of `terraform plan -detailed-exitcode` when the plan holds changes.
	exitCodeChanges = 2
)

var (
	ErrPlanFailed    = errors.New("terraform plan failed")
	ErrRunnerStopped = errors.New("terraform runner stopped")
)

type Paths struct {
	Terraform string
	WorkDir   string
}

type Runner struct {
	executor execx.Executor
	paths    Paths
	mu       sync.Mutex
	cmds     map[string]*execx.Cmd
	stopped  bool
}

func NewRunner(executor execx.Executor, paths Paths) *Runner {
	if paths.Terraform == "" {
		paths.Terraform = "terraform"
	}

	return &Runner{
		executor: executor,
		paths:    paths,
		cmds:     make(map[string]*execx.Cmd),
	}
}

func (r *Runner) CmdPath() string {
	return r.paths.Terraform
}

func (r *Runner) newCmd(args []string) *execx.Cmd {
	return execx.NewCmd(r.paths.Terraform, execx.CmdOptions{
		Args:     args,
		Executor: r.executor,
		WorkDir:  r.paths.WorkDir,
	})
}

// run starts cmd and keeps it registered until it exits, so that Stop can kill it.
func (r *Runner) run(cmd *execx.Cmd) error {
	r.mu.Lock()

	if r.stopped {
		r.mu.Unlock()

		return ErrRunnerStopped
	}

	if err := cmd.Cmd.Start(); err != nil {
		r.mu.Unlock()

		return err
	}

	id := uuid.NewString()
	r.cmds[id] = cmd

	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.cmds, id)
		r.mu.Unlock()
	}()

	return cmd.Cmd.Wait()
}

func (r *Runner) Init() error {
	cmd := r.newCmd([]string{"init", "-input=false", "-no-color"})

	if err := r.run(cmd); err != nil {
		return fmt.Errorf("command execution failed: %w", execx.NewErrCmdFailed(cmd.Path, cmd.Args, err, cmd.Log))
	}

	return nil
}

// Plan writes the plan to PlanFile and reports whether it holds any change.
func (r *Runner) Plan(params ...string) (bool, error) {
	args := append([]string{"plan", "-input=false", "-no-color", "-detailed-exitcode", "-out", PlanFile}, params...)

	cmd := r.newCmd(args)

	err := r.run(cmd)
	if errors.Is(err, ErrRunnerStopped) {
		return false, err
	}

	switch execx.ExitCode(err) {
	case 0:
		return false, nil

	case exitCodeChanges:
		return true, nil

	default:
		return false, fmt.Errorf("%w: %w", ErrPlanFailed, execx.NewErrCmdFailed(cmd.Path, cmd.Args, err, cmd.Log))
	}
}

// ShowPlan decodes the plan written by Plan.
func (r *Runner) ShowPlan() (*tfjson.Plan, error) {
	cmd := r.newCmd([]string{"show", "-json", PlanFile})

	if err := r.run(cmd); err != nil {
		return nil, fmt.Errorf("command execution failed: %w", execx.NewErrCmdFailed(cmd.Path, cmd.Args, err, cmd.Log))
	}

	var plan tfjson.Plan

	if err := json.Unmarshal(cmd.Log.Out.Bytes(), &plan); err != nil {
		return nil, fmt.Errorf("error while decoding terraform plan: %w", err)
	}

	return &plan, nil
}

// Stop kills the running terraform commands. A stopped runner starts no new command.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true

	for _, cmd := range r.cmds {
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("error stopping terraform runner: %w", err)
		}
	}

	return nil
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package git

import (
	"errors"
	"fmt"
	"strings"

	execx "github.com/creatium/gitopsctl/internal/x/exec"
)

var ErrNotARepository = errors.New("not a git repository")

type Runner struct {
	executor execx.Executor
	dir      string
}

func NewRunner(executor execx.Executor, dir string) *Runner {
	return &Runner{executor: executor, dir: dir}
}

// Head returns the commit checked out in the working directory.
func (r *Runner) Head() (string, error) {
	return r.revParse("HEAD")
}

// Branch returns the checked out branch, "HEAD" when detached.
func (r *Runner) Branch() (string, error) {
	return r.revParse("--abbrev-ref", "HEAD")
}

func (r *Runner) revParse(args ...string) (string, error) {
	cmd := execx.NewCmd("git", execx.CmdOptions{
		Args:     append([]string{"rev-parse"}, args...),
		Executor: r.executor,
		WorkDir:  r.dir,
	})

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotARepository, r.dir, err)
	}

	return strings.TrimSpace(cmd.Log.Out.String()), nil
}

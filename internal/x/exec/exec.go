// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package execx

import (
	"os"
	"os/exec"
	"path/filepath"
)

type Executor interface {
	Command(name string, arg ...string) *exec.Cmd
}

func NewStdExecutor() *StdExecutor {
	return &StdExecutor{}
}

type StdExecutor struct{}

func (*StdExecutor) Command(name string, arg ...string) *exec.Cmd {
	return exec.Command(name, arg...)
}

// NewFakeExecutor returns an executor that re-runs the current test binary, which is expected
// to define a TestHelperProcess function that emulates the called tool.
func NewFakeExecutor(env ...string) *FakeExecutor {
	return &FakeExecutor{env: env}
}

type FakeExecutor struct {
	env []string
}

func (e *FakeExecutor) Command(name string, arg ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", filepath.Base(name)}
	cs = append(cs, arg...)

	cmd := exec.Command(os.Args[0], cs...) //nolint:gosec // test helper process.
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
	cmd.Env = append(cmd.Env, e.env...)

	return cmd
}

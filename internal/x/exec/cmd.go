// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package execx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

var (
	Debug        = false //nolint:gochecknoglobals // This variable is shared between all the command instances.
	ErrCmdFailed = errors.New("command failed")
)

func NewErrCmdFailed(name string, args []string, err error, res *CmdLog) error {
	return fmt.Errorf("%s %s: %w - %w\n%s", name, strings.Join(args, " "), ErrCmdFailed, err, res)
}

type CmdOptions struct {
	Out      io.Writer
	Err      io.Writer
	Executor Executor
	WorkDir  string
	Args     []string
}

type CmdLog struct {
	Out *bytes.Buffer
	Err *bytes.Buffer
}

func (l *CmdLog) String() string {
	return fmt.Sprintf("stdout: %s\nstderr: %s", l.Out.String(), l.Err.String())
}

type Cmd struct {
	*exec.Cmd
	Log *CmdLog
}

func NewCmd(name string, opts CmdOptions) *Cmd {
	outLog := bytes.NewBufferString("")
	errLog := bytes.NewBufferString("")

	outWriters := []io.Writer{outLog}
	errWriters := []io.Writer{errLog}

	if opts.Executor == nil {
		opts.Executor = NewStdExecutor()
	}

	if opts.Out != nil {
		outWriters = append(outWriters, opts.Out)
	}

	if opts.Err != nil {
		errWriters = append(errWriters, opts.Err)
	}

	if Debug {
		outWriters = append(outWriters, os.Stdout)
		errWriters = append(errWriters, os.Stderr)
	}

	coreCmd := opts.Executor.Command(name, opts.Args...)
	coreCmd.Stdout = io.MultiWriter(outWriters...)
	coreCmd.Stderr = io.MultiWriter(errWriters...)
	coreCmd.Dir = opts.WorkDir

	return &Cmd{
		Cmd: coreCmd,
		Log: &CmdLog{
			Out: outLog,
			Err: errLog,
		},
	}
}

func (c *Cmd) Run() error {
	if err := c.Cmd.Run(); err != nil {
		return NewErrCmdFailed(c.Path, c.Args, err, c.Log)
	}

	return nil
}

// ExitCode returns the exit status of the process, or -1 when the command could not be started.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}

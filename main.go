// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/creatium/gitopsctl/cmd"
	"github.com/creatium/gitopsctl/internal/app"
)

var (
	version   = "unknown"
	gitCommit = "unknown"
	buildTime = "unknown"
	goVersion = runtime.Version()
)

func main() {
	os.Exit(exec())
}

func exec() int {
	ctn := app.GetContainerInstance()

	ctn.Version = version
	ctn.GitCommit = gitCommit
	ctn.BuildTime = buildTime
	ctn.GoVersion = goVersion
	ctn.MachineArch = runtime.GOARCH
	ctn.MachineOS = runtime.GOOS

	if _, err := cmd.NewRootCmd().ExecuteC(); err != nil {
		logrus.Error(err)

		return 1
	}

	return 0
}

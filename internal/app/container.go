// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"sync"
)

var (
	container *Container      //nolint:gochecknoglobals // singleton pattern.
	lock      = &sync.Mutex{} //nolint:gochecknoglobals // singleton pattern.
)

type Parameters struct {
	MachineArch string
	MachineOS   string
	Version     string
	GitCommit   string
	BuildTime   string
	GoVersion   string
}

type services struct {
	versions *VersionsCtn
}

type Container struct {
	Parameters
	services
}

func NewDefaultParameters() Parameters {
	return Parameters{
		MachineArch: "unknown",
		MachineOS:   "unknown",
		Version:     "unknown",
		GitCommit:   "unknown",
		BuildTime:   "unknown",
		GoVersion:   "unknown",
	}
}

func GetContainerInstance() *Container {
	lock.Lock()
	defer lock.Unlock()

	if container == nil {
		container = &Container{
			Parameters: NewDefaultParameters(),
		}
	}

	return container
}

func (c *Container) Versions() *VersionsCtn {
	if c.versions == nil {
		c.versions = NewVersionsCtn(c.Version, c.GitCommit, c.BuildTime, c.GoVersion, c.MachineOS+"/"+c.MachineArch)
	}

	return c.versions
}

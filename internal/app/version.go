// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"github.com/creatium/gitopsctl/internal/chart"
	"github.com/creatium/gitopsctl/internal/topology"
)

type VersionsCtn struct {
	Version   string
	GitCommit string
	BuildTime string
	GoVersion string
	OSArch    string
}

func NewVersionsCtn(version, gitCommit, buildTime, goVersion, osArch string) *VersionsCtn {
	return &VersionsCtn{
		Version:   version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: goVersion,
		OSArch:    osArch,
	}
}

// Map lists the build information together with the versions the binary supports.
func (v *VersionsCtn) Map() map[string]string {
	res := map[string]string{
		"version":    v.Version,
		"gitCommit":  v.GitCommit,
		"buildTime":  v.BuildTime,
		"goVersion":  v.GoVersion,
		"osArch":     v.OSArch,
		"kubernetes": topology.MinSupportedVersion + " - " + topology.MaxSupportedVersion,
	}

	if c, err := chart.Load(); err == nil {
		res["workloadChart"] = c.Metadata.Version
	}

	return res
}

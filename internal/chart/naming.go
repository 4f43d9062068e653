// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"strings"
)

// MaxNameLength is the label value ceiling enforced by the Kubernetes API.
const MaxNameLength = 63

// Truncate cuts s to MaxNameLength and strips any trailing separator left by the cut.
func Truncate(s string) string {
	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}

	return strings.TrimRight(s, "-")
}

// Name is the workload short name: the override if any, the chart name otherwise.
func Name(chartName, nameOverride string) string {
	if nameOverride != "" {
		return Truncate(nameOverride)
	}

	return Truncate(chartName)
}

// FullName derives the name shared by every object of a release. A release that already
// contains the workload name is used as is.
func FullName(release, chartName, nameOverride, fullnameOverride string) string {
	if fullnameOverride != "" {
		return Truncate(fullnameOverride)
	}

	name := nameOverride
	if name == "" {
		name = chartName
	}

	if strings.Contains(release, name) {
		return Truncate(release)
	}

	return Truncate(release + "-" + name)
}

// ChartLabel is the value of the helm.sh/chart label.
func ChartLabel(chartName, version string) string {
	return Truncate(chartName + "-" + strings.ReplaceAll(version, "+", "_"))
}

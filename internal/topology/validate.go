// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topology

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Al-Pragliola/go-version"
	"github.com/go-playground/validator/v10"
	"k8s.io/apimachinery/pkg/util/validation"
)

const (
	MinSupportedVersion = "1.29.0"
	MaxSupportedVersion = "1.33.0"
)

var (
	ErrInvalidEnvironment    = errors.New("invalid environment")
	ErrDuplicatePool         = errors.New("duplicate node pool name")
	ErrInvalidPoolName       = errors.New("node pool name must start with a letter and hold only lowercase letters, digits and '-'")
	ErrMissingSystemPool     = errors.New("at least one system pool is required")
	ErrAutoscaleBounds       = errors.New("invalid autoscale bounds")
	ErrContradictoryScaling  = errors.New("contradictory scaling definition")
	ErrComputePoolNotTainted = errors.New("compute pool must carry the compute taint")
	ErrUnsupportedVersion    = errors.New("unsupported kubernetes version")
)

// Validate checks env against the structural and scaling policy. Every violation is reported.
func Validate(env Environment) error {
	var errs []error

	if err := validator.New().Struct(env); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidEnvironment, err))
	}

	if err := ValidateVersion(env.Cluster.Version); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[string]bool, len(env.NodePools))
	hasSystem := false

	for _, p := range env.NodePools {
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicatePool, p.Name))
		}

		seen[p.Name] = true

		if msgs := validation.IsDNS1035Label(p.Name); len(msgs) > 0 {
			errs = append(errs, fmt.Errorf("%w: %q: %s", ErrInvalidPoolName, p.Name, strings.Join(msgs, ", ")))
		}

		if p.Class == PoolClassSystem {
			hasSystem = true
		}

		errs = append(errs, ValidateScaling(p))

		if p.Class == PoolClassCompute && !hasTaint(p.Taints, ComputeTaint()) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrComputePoolNotTainted, p.Name))
		}
	}

	if !hasSystem {
		errs = append(errs, ErrMissingSystemPool)
	}

	for _, r := range append(append([]Rule{}, env.Firewall.Inbound...), env.Firewall.Outbound...) {
		if r.Protocol == "icmp" {
			continue
		}

		if _, err := ParsePorts(r.Ports); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// ValidateScaling enforces the pool scaling policy. A fixed pool is described by its node count
// alone; an autoscaled pool by 1 <= min <= max, with an optional node count equal to min.
func ValidateScaling(p NodePool) error {
	a := p.Autoscale

	if !a.Enabled {
		if a.MinNodes != 0 || a.MaxNodes != 0 {
			return fmt.Errorf("%w: pool %s sets autoscale bounds with autoscaling disabled", ErrContradictoryScaling, p.Name)
		}

		if p.NodeCount < 1 {
			return fmt.Errorf("%w: pool %s needs a node count of at least 1", ErrAutoscaleBounds, p.Name)
		}

		return nil
	}

	if a.MinNodes < 1 || a.MinNodes > a.MaxNodes {
		return fmt.Errorf(
			"%w: pool %s wants 1 <= minNodes <= maxNodes, got [%d, %d]",
			ErrAutoscaleBounds, p.Name, a.MinNodes, a.MaxNodes,
		)
	}

	if p.NodeCount != 0 && p.NodeCount != a.MinNodes {
		return fmt.Errorf(
			"%w: pool %s is autoscaled, nodeCount %d must be omitted or equal minNodes %d",
			ErrContradictoryScaling, p.Name, p.NodeCount, a.MinNodes,
		)
	}

	return nil
}

// ValidateVersion checks the cluster version minor is within the supported range. Provider
// suffixes such as "-do.0" are ignored.
func ValidateVersion(v string) error {
	parsed, err := version.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnsupportedVersion, v, err)
	}

	segments := parsed.Segments()

	minor, err := version.NewVersion(fmt.Sprintf("%d.%d.0", segments[0], segments[1]))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnsupportedVersion, v, err)
	}

	lower := version.Must(version.NewVersion(MinSupportedVersion))
	upper := version.Must(version.NewVersion(MaxSupportedVersion))

	if minor.LessThan(lower) || minor.GreaterThan(upper) {
		return fmt.Errorf(
			"%w: %s is outside [%s, %s]",
			ErrUnsupportedVersion, v, MinSupportedVersion, MaxSupportedVersion,
		)
	}

	return nil
}

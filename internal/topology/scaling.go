// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topology

import (
	"errors"
	"fmt"
)

var ErrNodeCountOutOfBounds = errors.New("observed node count out of bounds")

// Scaling is the desired-state write for one node pool. MinNodes and MaxNodes are only set when
// the managed autoscaler owns the pool; a fixed pool only carries NodeCount.
type Scaling struct {
	NodeCount int
	AutoScale bool
	MinNodes  *int
	MaxNodes  *int
}

func ScalingFor(p NodePool) Scaling {
	if !p.Autoscale.Enabled {
		return Scaling{NodeCount: p.NodeCount}
	}

	minNodes, maxNodes := p.Autoscale.MinNodes, p.Autoscale.MaxNodes

	return Scaling{
		NodeCount: minNodes,
		AutoScale: true,
		MinNodes:  &minNodes,
		MaxNodes:  &maxNodes,
	}
}

// InBounds checks an observed node count against the pool policy: the exact count for fixed pools,
// the [min, max] range for autoscaled ones.
func InBounds(p NodePool, observed int) error {
	s := ScalingFor(p)

	if !s.AutoScale {
		if observed != s.NodeCount {
			return fmt.Errorf("%w: pool %s has %d nodes, want %d", ErrNodeCountOutOfBounds, p.Name, observed, s.NodeCount)
		}

		return nil
	}

	if observed < *s.MinNodes || observed > *s.MaxNodes {
		return fmt.Errorf(
			"%w: pool %s has %d nodes, want [%d, %d]",
			ErrNodeCountOutOfBounds, p.Name, observed, *s.MinNodes, *s.MaxNodes,
		)
	}

	return nil
}

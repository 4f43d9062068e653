// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diffs

import (
	"fmt"

	"github.com/creatium/gitopsctl/internal/topology"
	yamlx "github.com/creatium/gitopsctl/internal/x/yaml"
)

// TopologyImmutablePaths are the fields the provider can only change by recreating the
// cluster or the pool.
func TopologyImmutablePaths() []string {
	return []string{
		".cluster.name",
		".cluster.region",
		".nodePools.*.size",
		".nodePools.*.class",
	}
}

// TopologyDocument turns an environment into a tree suited for diffing: node pools are keyed
// by name so that reordering them is not a change.
func TopologyDocument(env topology.Environment) (map[string]any, error) {
	doc, err := yamlx.Convert[map[string]any](env)
	if err != nil {
		return nil, fmt.Errorf("error while converting environment %s: %w", env.Name, err)
	}

	pools := make(map[string]any, len(env.NodePools))

	list, _ := doc["nodePools"].([]any)
	for i, p := range list {
		pools[env.NodePools[i].Name] = p
	}

	doc["nodePools"] = pools

	return doc, nil
}

// NewTopologyChecker compares the recorded environment with the one about to be applied.
func NewTopologyChecker(current, desired topology.Environment) (*BaseChecker, error) {
	cur, err := TopologyDocument(current)
	if err != nil {
		return nil, err
	}

	des, err := TopologyDocument(desired)
	if err != nil {
		return nil, err
	}

	return NewBaseChecker(cur, des), nil
}

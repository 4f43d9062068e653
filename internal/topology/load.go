// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topology

import (
	"fmt"
	"path/filepath"

	yamlx "github.com/creatium/gitopsctl/internal/x/yaml"
)

const (
	DefaultBackendRegion = "us-east-1"
	StateKeyTemplate     = "%s/terraform.tfstate"
)

// Load reads an environment definition. The environment is named after the directory holding
// the file unless the file names it.
func Load(path string) (Environment, error) {
	env, err := yamlx.FromFileV3[Environment](path)
	if err != nil {
		return Environment{}, err
	}

	if env.Name == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return Environment{}, fmt.Errorf("error while resolving %s: %w", path, err)
		}

		env.Name = filepath.Base(filepath.Dir(abs))
	}

	return Normalize(env), nil
}

// Normalize fills the defaults every consumer relies on: placement labels on every pool, the
// firewall name and the backend region. Taints are never added, compute pools declare theirs.
// It returns a copy.
func Normalize(env Environment) Environment {
	out := env
	out.NodePools = make([]NodePool, len(env.NodePools))

	for i, p := range env.NodePools {
		np := p

		np.Labels = make(map[string]string, len(p.Labels)+2)
		for k, v := range p.Labels {
			np.Labels[k] = v
		}

		np.Labels[PoolClassLabel] = string(p.Class)
		np.Labels[PoolNameLabel] = p.Name

		np.Taints = append([]Taint(nil), p.Taints...)

		out.NodePools[i] = np
	}

	if out.Firewall.Name == "" {
		out.Firewall.Name = out.Cluster.Name + "-nodes"
	}

	if out.Backend.Region == "" {
		out.Backend.Region = DefaultBackendRegion
	}

	return out
}

// StateKey is the object key holding the Terraform state of the environment.
func (e Environment) StateKey() string {
	return fmt.Sprintf(StateKeyTemplate, e.Name)
}

// Pool returns the pool with the given name.
func (e Environment) Pool(name string) (NodePool, bool) {
	for _, p := range e.NodePools {
		if p.Name == name {
			return p, true
		}
	}

	return NodePool{}, false
}

// DefaultPool is the pool declared inline with the cluster: the first system pool, or the first
// pool when no system pool exists.
func (e Environment) DefaultPool() NodePool {
	for _, p := range e.NodePools {
		if p.Class == PoolClassSystem {
			return p
		}
	}

	return e.NodePools[0]
}

func hasTaint(taints []Taint, t Taint) bool {
	for _, tt := range taints {
		if tt == t {
			return true
		}
	}

	return false
}

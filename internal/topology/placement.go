// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topology

import (
	corev1 "k8s.io/api/core/v1"
)

// ComputeTaint keeps every workload without the matching toleration off compute nodes.
func ComputeTaint() Taint {
	return Taint{
		Key:    PoolClassLabel,
		Value:  string(PoolClassCompute),
		Effect: string(corev1.TaintEffectNoSchedule),
	}
}

// Placement is the scheduling side of a workload: what it selects and what it tolerates.
type Placement struct {
	NodeSelector map[string]string
	Tolerations  []corev1.Toleration
}

// PlacementFor returns the placement rule a workload needs to land on a pool class.
func PlacementFor(class PoolClass) Placement {
	p := Placement{
		NodeSelector: map[string]string{PoolClassLabel: string(class)},
	}

	if class == PoolClassCompute {
		ct := ComputeTaint()

		p.Tolerations = []corev1.Toleration{
			{
				Key:      ct.Key,
				Operator: corev1.TolerationOpEqual,
				Value:    ct.Value,
				Effect:   corev1.TaintEffect(ct.Effect),
			},
		}
	}

	return p
}

// CanSchedule tells whether a workload with the given placement may run on the pool: every
// selector entry must match a pool label and every repelling taint must be tolerated.
func CanSchedule(pool NodePool, pl Placement) bool {
	labels := poolLabels(pool)

	for k, v := range pl.NodeSelector {
		if got, ok := labels[k]; !ok || got != v {
			return false
		}
	}

	for _, t := range pool.Taints {
		if !t.Repels() {
			continue
		}

		taint := t.Core()

		if !tolerates(pl.Tolerations, &taint) {
			return false
		}
	}

	return true
}

// Place returns the pools of env the workload may be scheduled on.
func Place(env Environment, pl Placement) []NodePool {
	var pools []NodePool

	for _, p := range env.NodePools {
		if CanSchedule(p, pl) {
			pools = append(pools, p)
		}
	}

	return pools
}

func tolerates(tolerations []corev1.Toleration, taint *corev1.Taint) bool {
	for i := range tolerations {
		if tolerations[i].ToleratesTaint(taint) {
			return true
		}
	}

	return false
}

func poolLabels(pool NodePool) map[string]string {
	labels := make(map[string]string, len(pool.Labels)+2)

	for k, v := range pool.Labels {
		labels[k] = v
	}

	labels[PoolClassLabel] = string(pool.Class)
	labels[PoolNameLabel] = pool.Name

	return labels
}

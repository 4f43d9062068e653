// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import (
	"context"
	"errors"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/creatium/gitopsctl/internal/topology"
)

// DOKSPoolLabel is set by the managed control plane on every node.
const DOKSPoolLabel = "doks.digitalocean.com/node-pool"

var ErrMissingTaint = errors.New("node is missing the pool taint")

type PoolStatus struct {
	Pool     string
	Class    topology.PoolClass
	Observed int
	Ready    int
	Errs     []error
}

type Report struct {
	Pools []PoolStatus
	// Unmanaged lists the nodes that belong to no declared pool.
	Unmanaged []string
}

func (r Report) Err() error {
	var errs []error

	for _, p := range r.Pools {
		errs = append(errs, p.Errs...)
	}

	return errors.Join(errs...)
}

// Nodes compares the live nodes of a cluster with the declared pools: node counts must lie
// within the scaling policy and repelling taints must be present.
func Nodes(ctx context.Context, cs kubernetes.Interface, env topology.Environment) (Report, error) {
	list, err := cs.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return Report{}, fmt.Errorf("error while listing nodes: %w", err)
	}

	byPool := map[string][]corev1.Node{}

	var report Report

	for _, n := range list.Items {
		pool := poolOf(n)
		if _, ok := env.Pool(pool); !ok {
			report.Unmanaged = append(report.Unmanaged, n.Name)

			continue
		}

		byPool[pool] = append(byPool[pool], n)
	}

	sort.Strings(report.Unmanaged)

	for _, p := range env.NodePools {
		nodes := byPool[p.Name]

		st := PoolStatus{Pool: p.Name, Class: p.Class, Observed: len(nodes)}

		if err := topology.InBounds(p, len(nodes)); err != nil {
			st.Errs = append(st.Errs, fmt.Errorf("pool %s: %w", p.Name, err))
		}

		for _, n := range nodes {
			if ready(n) {
				st.Ready++
			}

			for _, t := range p.Taints {
				if !t.Repels() {
					continue
				}

				if !hasTaint(n, t.Core()) {
					st.Errs = append(st.Errs, fmt.Errorf("%w: %s in pool %s lacks %s=%s:%s",
						ErrMissingTaint, n.Name, p.Name, t.Key, t.Value, t.Effect))
				}
			}
		}

		report.Pools = append(report.Pools, st)
	}

	return report, nil
}

func poolOf(n corev1.Node) string {
	if p, ok := n.Labels[topology.PoolNameLabel]; ok {
		return p
	}

	return n.Labels[DOKSPoolLabel]
}

func ready(n corev1.Node) bool {
	for _, c := range n.Status.Conditions {
		if c.Type == corev1.NodeReady {
			return c.Status == corev1.ConditionTrue
		}
	}

	return false
}

func hasTaint(n corev1.Node, taint corev1.Taint) bool {
	for _, t := range n.Spec.Taints {
		if t.MatchTaint(&taint) && t.Value == taint.Value {
			return true
		}
	}

	return false
}

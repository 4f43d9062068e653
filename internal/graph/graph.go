// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package graph

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emicklei/dot"

	"github.com/creatium/gitopsctl/internal/topology"
)

type Format string

const (
	FormatDOT     Format = "dot"
	FormatMermaid Format = "mermaid"
)

var ErrUnknownFormat = errors.New("unknown graph format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatDOT:
		return FormatDOT, nil

	case FormatMermaid:
		return f, nil

	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
	}
}

// Workload is a service and where it asks to be scheduled.
type Workload struct {
	Name      string
	Placement topology.Placement
}

// Generator draws an environment: the cluster, its pools and the workloads each pool can run.
type Generator struct {
	Format Format
}

func (g *Generator) Generate(env topology.Environment, workloads []Workload, w io.Writer) error {
	graph := build(env, workloads)

	var out string
	if g.Format == FormatMermaid {
		out = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		out = graph.String()
	}

	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}

	return nil
}

func build(env topology.Environment, workloads []Workload) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "LR")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	cluster := graph.Subgraph("cluster_"+env.Name, dot.ClusterOption{})
	cluster.Attr("label", fmt.Sprintf("%s (%s, %s)", env.Cluster.Name, env.Cluster.Region, env.Cluster.Version))

	pools := make(map[string]dot.Node, len(env.NodePools))

	for _, p := range env.NodePools {
		n := cluster.Node("pool/" + p.Name)
		n.Label(fmt.Sprintf("%s\\n[%s, %s, %s]", p.Name, p.Class, p.Size, scaling(p)))

		if p.Class == topology.PoolClassCompute {
			n.Attr("style", "filled")
			n.Attr("fillcolor", "lightyellow")
		}

		pools[p.Name] = n
	}

	for _, wl := range workloads {
		n := graph.Node("svc/" + wl.Name)
		n.Label(wl.Name)
		n.Attr("shape", "ellipse")

		placed := topology.Place(env, wl.Placement)
		if len(placed) == 0 {
			n.Attr("color", "red")

			continue
		}

		for _, p := range placed {
			graph.Edge(n, pools[p.Name])
		}
	}

	return graph
}

func scaling(p topology.NodePool) string {
	s := topology.ScalingFor(p)
	if !s.AutoScale {
		return fmt.Sprintf("%d nodes", s.NodeCount)
	}

	return fmt.Sprintf("%d-%d nodes", *s.MinNodes, *s.MaxNodes)
}

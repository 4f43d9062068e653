// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
	"github.com/creatium/gitopsctl/internal/graph"
	iox "github.com/creatium/gitopsctl/internal/x/io"
)

var ErrEnvRequired = errors.New("the --env flag is required")

func NewGraphCmd() *cobra.Command {
	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the node pools of an environment and the services each pool runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envName := viper.GetString("env")
			if envName == "" {
				return ErrEnvRequired
			}

			format, err := graph.ParseFormat(viper.GetString("format"))
			if err != nil {
				return err
			}

			p, err := cmdutil.LoadPlatform()
			if err != nil {
				return err
			}

			env, err := p.Environment(envName)
			if err != nil {
				return err
			}

			r, err := cmdutil.NewRenderer(cmd, p)
			if err != nil {
				return err
			}

			t, err := r.Topology(envName)
			if err != nil {
				return err
			}

			var workloads []graph.Workload

			for _, svc := range p.ServicesIn(envName) {
				pl, err := r.Placement(svc, env)
				if err != nil {
					return err
				}

				workloads = append(workloads, graph.Workload{Name: svc.Name, Placement: pl})
			}

			var out io.Writer = cmd.OutOrStdout()

			if file := viper.GetString("output"); file != "" {
				if err := iox.EnsureDir(file); err != nil {
					return err
				}

				f, err := os.Create(file)
				if err != nil {
					return fmt.Errorf("error while creating %s: %w", file, err)
				}

				defer f.Close()

				out = f

				logrus.Infof("Writing %s graph of %s to %s", format, envName, file)
			}

			g := graph.Generator{Format: format}

			return g.Generate(t, workloads, out)
		},
	}

	graphCmd.Flags().StringP("env", "e", "", "Environment to draw")
	graphCmd.Flags().StringP("format", "f", string(graph.FormatDOT), "Output format: dot or mermaid")
	graphCmd.Flags().StringP("output", "o", "", "File to write the graph to, stdout when empty")
	graphCmd.Flags().StringArray("set", []string{}, "Override values for this run (path=value[,path=value], can be repeated)")

	return graphCmd
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package verify

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
	"github.com/creatium/gitopsctl/internal/verify"
)

var ErrEnvRequired = errors.New("the --env flag is required")

func NewNodesCmd() *cobra.Command {
	nodesCmd := &cobra.Command{
		Use:   "nodes",
		Short: "Check node counts and taints of every pool against its scaling policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envName := viper.GetString("env")
			if envName == "" {
				return ErrEnvRequired
			}

			p, err := cmdutil.LoadPlatform()
			if err != nil {
				return err
			}

			r, err := cmdutil.NewRenderer(cmd, p)
			if err != nil {
				return err
			}

			env, err := r.Topology(envName)
			if err != nil {
				return err
			}

			cs, err := cmdutil.Clientset(viper.GetString("kubeconfig"))
			if err != nil {
				return err
			}

			report, err := verify.Nodes(cmd.Context(), cs, env)
			if err != nil {
				return err
			}

			if err := printReport(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			for _, n := range report.Unmanaged {
				logrus.Warnf("node %s belongs to no declared pool", n)
			}

			if err := report.Err(); err != nil {
				return fmt.Errorf("cluster of %s does not match its topology: %w", envName, err)
			}

			logrus.Infof("Nodes of %s match the declared pools", envName)

			return nil
		},
	}

	nodesCmd.Flags().StringP("env", "e", "", "Environment to verify")
	nodesCmd.Flags().String("kubeconfig", "", "Path to the kubeconfig of the environment cluster")

	return nodesCmd
}

func printReport(out io.Writer, report verify.Report) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "POOL\tCLASS\tNODES\tREADY\tSTATUS")

	for _, p := range report.Pools {
		status := "ok"
		if len(p.Errs) > 0 {
			status = fmt.Sprintf("%d issue(s)", len(p.Errs))
		}

		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n", p.Pool, p.Class, p.Observed, p.Ready, status)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("error while writing report: %w", err)
	}

	return nil
}

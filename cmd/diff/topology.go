// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diff

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
	"github.com/creatium/gitopsctl/internal/diffs"
	"github.com/creatium/gitopsctl/internal/state"
	"github.com/creatium/gitopsctl/internal/topology"
)

var (
	ErrEnvRequired      = errors.New("the --env flag is required")
	ErrImmutableChanged = errors.New("immutable fields changed")
	ErrOutOfDate        = errors.New("rendered directory is out of date")
)

func NewTopologyCmd() *cobra.Command {
	topologyCmd := &cobra.Command{
		Use:   "topology",
		Short: "Diff an environment topology against a file or the one recorded in the cluster",
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

			desired, err := r.Topology(envName)
			if err != nil {
				return err
			}

			current, err := currentTopology(cmd.Context(), envName, viper.GetString("against"), viper.GetString("kubeconfig"))
			if err != nil {
				return err
			}

			checker, err := diffs.NewTopologyChecker(current, desired)
			if err != nil {
				return err
			}

			changelog, err := checker.GenerateDiff()
			if err != nil {
				return err
			}

			if len(changelog) == 0 {
				logrus.Infof("No differences found in the topology of %s", envName)

				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Differences found in the topology of %s:\n%s", envName, checker.DiffToString(changelog))

			violations := checker.AssertImmutableViolations(changelog, diffs.TopologyImmutablePaths())
			if len(violations) > 0 {
				for _, v := range violations {
					logrus.Error(v)
				}

				return fmt.Errorf("%w: %d change(s) would recreate the cluster or a node pool", ErrImmutableChanged, len(violations))
			}

			return nil
		},
	}

	topologyCmd.Flags().StringP("env", "e", "", "Environment to diff")
	topologyCmd.Flags().String("against", "", "Topology file to compare with, the recorded one is read from the cluster when empty")
	topologyCmd.Flags().String("kubeconfig", "", "Path to the kubeconfig of the environment cluster")

	return topologyCmd
}

func currentTopology(ctx context.Context, env, against, kubeconfig string) (topology.Environment, error) {
	if against != "" {
		t, err := topology.Load(against)
		if err != nil {
			return topology.Environment{}, err
		}

		t.Name = env

		return t, nil
	}

	cs, err := cmdutil.Clientset(kubeconfig)
	if err != nil {
		return topology.Environment{}, err
	}

	t, err := state.NewStore(cs).GetTopology(ctx, env)
	if err != nil {
		return topology.Environment{}, fmt.Errorf("error while reading the recorded topology: %w", err)
	}

	return t, nil
}

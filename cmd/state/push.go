// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
	"github.com/creatium/gitopsctl/internal/git"
	"github.com/creatium/gitopsctl/internal/state"
	"github.com/creatium/gitopsctl/internal/topology"
	execx "github.com/creatium/gitopsctl/internal/x/exec"
)

var ErrEnvRequired = errors.New("the --env flag is required")

func NewPushCmd() *cobra.Command {
	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Record the current topology of an environment in its cluster, after a successful apply",
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

			if err := topology.Validate(env); err != nil {
				return fmt.Errorf("refusing to record an invalid topology of %s: %w", envName, err)
			}

			revision := viper.GetString("revision")
			if revision == "" {
				revision, err = git.NewRunner(execx.NewStdExecutor(), p.Root).Head()
				if err != nil {
					logrus.Warnf("cannot resolve the applied revision: %v", err)

					revision = "unknown"
				}
			}

			cs, err := cmdutil.Clientset(viper.GetString("kubeconfig"))
			if err != nil {
				return err
			}

			rec, err := state.NewStore(cs).StoreTopology(cmd.Context(), env, revision)
			if err != nil {
				return err
			}

			logrus.Infof("Recorded topology of %s at revision %s (id %s)", envName, rec.Revision, rec.ID)

			return nil
		},
	}

	pushCmd.Flags().String("revision", "", "Revision the topology was applied from, defaults to the checked out commit")

	return pushCmd
}

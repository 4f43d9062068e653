// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/creatium/gitopsctl/cmd/state"
)

func NewStateCmd() *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Record or show the topology last applied to an environment cluster",
	}

	stateCmd.PersistentFlags().StringP("env", "e", "", "Environment of the cluster")
	stateCmd.PersistentFlags().String("kubeconfig", "", "Path to the kubeconfig of the environment cluster")

	stateCmd.AddCommand(state.NewPushCmd())
	stateCmd.AddCommand(state.NewShowCmd())

	return stateCmd
}

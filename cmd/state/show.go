// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
	"github.com/creatium/gitopsctl/internal/state"
)

func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the topology recorded in an environment cluster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			envName := viper.GetString("env")
			if envName == "" {
				return ErrEnvRequired
			}

			cs, err := cmdutil.Clientset(viper.GetString("kubeconfig"))
			if err != nil {
				return err
			}

			rec, err := state.NewStore(cs).GetRecord(cmd.Context(), envName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "# id: %s\n# revision: %s\n# appliedAt: %s\n", rec.ID, rec.Revision, rec.AppliedAt.Format(time.RFC3339))
			fmt.Fprint(out, string(rec.Topology))

			return nil
		},
	}
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/creatium/gitopsctl/cmd/plan"
)

func NewPlanCmd() *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Gate Terraform plans before they are applied",
	}

	planCmd.AddCommand(plan.NewCheckCmd())

	return planCmd
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/creatium/gitopsctl/cmd/scaffold"
)

func NewScaffoldCmd() *cobra.Command {
	scaffoldCmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Create the skeleton of new repository components",
	}

	scaffoldCmd.AddCommand(scaffold.NewServiceCmd())

	return scaffoldCmd
}

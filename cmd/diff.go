// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/creatium/gitopsctl/cmd/diff"
)

func NewDiffCmd() *cobra.Command {
	diffCmd := &cobra.Command{
		Use:   "diff",
		Short: "Show what changed against the recorded topology or a previous render",
	}

	diffCmd.AddCommand(diff.NewTopologyCmd())
	diffCmd.AddCommand(diff.NewManifestsCmd())

	return diffCmd
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/creatium/gitopsctl/cmd/validate"
)

func NewValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate topologies, service values or sync mappings before they are committed",
	}

	validateCmd.AddCommand(validate.NewTopologyCmd())
	validateCmd.AddCommand(validate.NewValuesCmd())
	validateCmd.AddCommand(validate.NewArgoCDCmd())
	validateCmd.AddCommand(validate.NewAllCmd())

	return validateCmd
}

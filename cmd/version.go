// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func NewVersionCmd(versions map[string]string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of gitopsctl",
		Run: func(cmd *cobra.Command, _ []string) {
			keys := make([]string, 0, len(versions))
			for k := range versions {
				keys = append(keys, k)
			}

			slices.Sort(keys)

			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", k, versions[k])
			}
		},
	}
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cobrax

import (
	"fmt"

	"github.com/spf13/cobra"
)

const RootName = "gitopsctl"

// GetFullname returns the hierarchy of the command and its parents. For example: "<command> <subcommand>...".
func GetFullname(c *cobra.Command) string {
	if c.Parent() == nil || c.Parent().Name() == RootName {
		return c.Name()
	}

	return fmt.Sprintf("%s %s", GetFullname(c.Parent()), c.Name())
}

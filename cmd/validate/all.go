// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
)

func NewAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Validate topologies, values and sync mappings of the whole platform",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := cmdutil.LoadPlatform()
			if err != nil {
				return err
			}

			r, err := cmdutil.NewRenderer(cmd, p)
			if err != nil {
				return err
			}

			errs := validateTopologies(r, p.Environments)
			errs = append(errs, validateValues(r, p, p.Environments, "")...)
			errs = append(errs, validateArgoCD(p)...)

			if err := report(errs); err != nil {
				return err
			}

			logrus.Info("Platform is valid")

			return nil
		},
	}
}

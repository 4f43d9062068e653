// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
	"github.com/creatium/gitopsctl/internal/argocd"
	"github.com/creatium/gitopsctl/internal/platform"
)

func NewArgoCDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "argocd",
		Short: "Validate the mapping of rendered paths to ArgoCD applications",
		RunE: func(_ *cobra.Command, _ []string) error {
			p, err := cmdutil.LoadPlatform()
			if err != nil {
				return err
			}

			return report(validateArgoCD(p))
		},
	}
}

func validateArgoCD(p *platform.Platform) []error {
	if err := argocd.Validate(p.Mappings(), p.PrimaryBranch); err != nil {
		return []error{err}
	}

	logrus.Infof("%d application mappings are valid", len(p.Mappings()))

	return nil
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
	"github.com/creatium/gitopsctl/internal/platform"
)

func NewValuesCmd() *cobra.Command {
	valuesCmd := &cobra.Command{
		Use:   "values",
		Short: "Validate the merged values of every service against the workload chart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := cmdutil.LoadPlatform()
			if err != nil {
				return err
			}

			envs, err := cmdutil.Environments(p, viper.GetString("env"))
			if err != nil {
				return err
			}

			r, err := cmdutil.NewRenderer(cmd, p)
			if err != nil {
				return err
			}

			return report(validateValues(r, p, envs, viper.GetString("service")))
		},
	}

	valuesCmd.Flags().StringP("env", "e", "", "Environment to validate, all of them when empty")
	valuesCmd.Flags().StringP("service", "s", "", "Service to validate, all of them when empty")
	valuesCmd.Flags().StringArray("set", []string{}, "Override values for this run (path=value[,path=value], can be repeated)")

	return valuesCmd
}

func validateValues(r *platform.Renderer, p *platform.Platform, envs []platform.Environment, service string) []error {
	var errs []error

	for _, env := range envs {
		for _, svc := range p.ServicesIn(env.Name) {
			if service != "" && svc.Name != service {
				continue
			}

			if err := r.ValidateService(svc, env); err != nil {
				errs = append(errs, err)

				continue
			}

			logrus.Infof("Values of %s in %s are valid", svc.Name, env.Name)
		}
	}

	return errs
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
	"github.com/creatium/gitopsctl/internal/platform"
	"github.com/creatium/gitopsctl/internal/topology"
)

var ErrValidationFailed = errors.New("validation failed")

func NewTopologyCmd() *cobra.Command {
	topologyCmd := &cobra.Command{
		Use:   "topology",
		Short: "Validate the cluster topology of every environment, or of the one given with --env",
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

			return report(validateTopologies(r, envs))
		},
	}

	topologyCmd.Flags().StringP("env", "e", "", "Environment to validate, all of them when empty")

	return topologyCmd
}

func validateTopologies(r *platform.Renderer, envs []platform.Environment) []error {
	var errs []error

	for _, env := range envs {
		t, err := r.Topology(env.Name)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		if err := topology.Validate(t); err != nil {
			errs = append(errs, fmt.Errorf("environment %s: %w", env.Name, err))

			continue
		}

		logrus.Infof("Topology of %s is valid", env.Name)
	}

	return errs
}

func report(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	for _, err := range errs {
		logrus.Error(err)
	}

	return fmt.Errorf("%w: %d error(s) found", ErrValidationFailed, len(errs))
}

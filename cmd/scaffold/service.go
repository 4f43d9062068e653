// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaffold

import (
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/internal/scaffold"
)

func NewServiceCmd() *cobra.Command {
	serviceCmd := &cobra.Command{
		Use:   "service NAME",
		Short: "Create services/NAME with its base values and a README",
		Long: `Create services/NAME with its base values and a README.

Values starting with env:// or file:// are resolved from the environment or a file.
Remember to add the service to platform.yaml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			root := viper.GetString("root")
			if root == "" {
				root = filepath.Dir(viper.GetString("platform"))
			}

			written, err := scaffold.NewService(root, scaffold.Service{
				Name:     args[0],
				Team:     viper.GetString("team"),
				Tier:     viper.GetString("tier"),
				NodePool: viper.GetString("node-pool"),
				Image:    viper.GetString("image"),
				Tag:      viper.GetString("tag"),
				Port:     viper.GetInt("port"),
				Expose:   viper.GetBool("expose"),
			})
			if err != nil {
				return err
			}

			for _, f := range written {
				logrus.Infof("Created %s", f)
			}

			logrus.Infof("Add %s to the services of platform.yaml to deploy it", args[0])

			return nil
		},
	}

	serviceCmd.Flags().String("team", "", "Team owning the service")
	serviceCmd.Flags().String("tier", "", "Tier label of the service")
	serviceCmd.Flags().String("node-pool", "general", "Pool class the service runs on: general, compute or system")
	serviceCmd.Flags().String("image", "", "Image repository, defaults to the platform registry")
	serviceCmd.Flags().String("tag", "", "Image tag")
	serviceCmd.Flags().Int("port", 0, "Container port")
	serviceCmd.Flags().Bool("expose", false, "Expose the service inside the cluster")
	serviceCmd.Flags().String("root", "", "Repository root, defaults to the directory of the platform file")

	return serviceCmd
}

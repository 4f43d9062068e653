// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
	"github.com/creatium/gitopsctl/internal/platform"
)

func NewArtifactCmd(artifact platform.Artifact, short string) *cobra.Command {
	artifactCmd := &cobra.Command{
		Use:   string(artifact),
		Short: short,
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

			outDir := OutDir(p, viper.GetString("outdir"))

			files, err := r.Render(outDir, artifact, envs...)
			if err != nil {
				return fmt.Errorf("error while rendering %s: %w", artifact, err)
			}

			for _, f := range files {
				logrus.Debugf("wrote %s", f)
			}

			logrus.Infof("Rendered %d file(s) into %s", len(files), outDir)

			return nil
		},
	}

	artifactCmd.Flags().StringP("env", "e", "", "Environment to render, all of them when empty")
	artifactCmd.Flags().StringP("outdir", "o", "", "Output directory, defaults to the rendered directory of the platform")
	artifactCmd.Flags().StringArray("set", []string{}, "Override values for this run (path=value[,path=value], can be repeated)")

	return artifactCmd
}

// OutDir resolves the render target: the flag when set, the platform rendered directory otherwise.
func OutDir(p *platform.Platform, flag string) string {
	if flag != "" {
		return flag
	}

	return filepath.Join(p.Root, p.RenderedDir)
}

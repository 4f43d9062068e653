// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diff

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
	"github.com/creatium/gitopsctl/cmd/render"
	"github.com/creatium/gitopsctl/internal/diffs"
	"github.com/creatium/gitopsctl/internal/platform"
)

func NewManifestsCmd() *cobra.Command {
	manifestsCmd := &cobra.Command{
		Use:   "manifests",
		Short: "Diff a fresh render of the manifests and applications against a rendered directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := cmdutil.LoadPlatform()
			if err != nil {
				return err
			}

			r, err := cmdutil.NewRenderer(cmd, p)
			if err != nil {
				return err
			}

			current := render.OutDir(p, viper.GetString("dir"))

			desired, err := os.MkdirTemp("", "gitopsctl-render-")
			if err != nil {
				return fmt.Errorf("error while creating temp dir: %w", err)
			}

			defer os.RemoveAll(desired)

			if _, err := r.Render(desired, platform.ArtifactManifests, p.Environments...); err != nil {
				return err
			}

			if _, err := r.Render(desired, platform.ArtifactArgoCD, p.Environments...); err != nil {
				return err
			}

			checker, err := diffs.NewManifestChecker(current, desired)
			if err != nil {
				return err
			}

			changelog, err := checker.GenerateDiff()
			if err != nil {
				return err
			}

			if len(changelog) == 0 {
				logrus.Info("Rendered manifests are up to date")

				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Differences found from %s:\n%s", current, checker.DiffToString(changelog))

			violations := checker.AssertImmutableViolations(changelog, diffs.ManifestImmutablePaths())
			for _, v := range violations {
				logrus.Warnf("%v: the object must be recreated", v)
			}

			if viper.GetBool("exit-code") {
				return fmt.Errorf("%w: %d change(s)", ErrOutOfDate, len(changelog))
			}

			return nil
		},
	}

	manifestsCmd.Flags().StringP("dir", "d", "", "Rendered directory to compare with, defaults to the rendered directory of the platform")
	manifestsCmd.Flags().Bool("exit-code", false, "Fail when the rendered directory is out of date")
	manifestsCmd.Flags().StringArray("set", []string{}, "Override values for this run (path=value[,path=value], can be repeated)")

	return manifestsCmd
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/cmd/cmdutil"
	"github.com/creatium/gitopsctl/cmd/render"
	"github.com/creatium/gitopsctl/internal/platform"
	"github.com/creatium/gitopsctl/internal/watch"
)

func NewWatchCmd() *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Validate and re-render the platform every time a definition changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := cmdutil.LoadPlatform()
			if err != nil {
				return err
			}

			outDir := render.OutDir(p, viper.GetString("outdir"))

			absOut, err := filepath.Abs(outDir)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := &watch.Watcher{
				Root:     p.Root,
				Ignore:   []string{absOut},
				Debounce: viper.GetDuration("debounce"),
			}

			logrus.Infof("Watching %s, press Ctrl+C to stop", p.Root)

			return w.Run(ctx, func() error {
				// Definitions may have changed, platform.yaml included.
				p, err := cmdutil.LoadPlatform()
				if err != nil {
					return err
				}

				r, err := cmdutil.NewRenderer(cmd, p)
				if err != nil {
					return err
				}

				if err := r.Validate(); err != nil {
					return err
				}

				files, err := r.Render(outDir, platform.ArtifactAll, p.Environments...)
				if err != nil {
					return err
				}

				logrus.Infof("Rendered %d file(s) into %s", len(files), outDir)

				return nil
			})
		},
	}

	watchCmd.Flags().StringP("outdir", "o", "", "Output directory, defaults to the rendered directory of the platform")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before re-rendering after a change")
	watchCmd.Flags().StringArray("set", []string{}, "Override values for this run (path=value[,path=value], can be repeated)")

	return watchCmd
}

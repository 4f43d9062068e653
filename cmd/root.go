// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/internal/app"
	"github.com/creatium/gitopsctl/internal/platform"
	cobrax "github.com/creatium/gitopsctl/internal/x/cobra"
	execx "github.com/creatium/gitopsctl/internal/x/exec"
	logrusx "github.com/creatium/gitopsctl/internal/x/logrus"
)

const EnvPrefix = "GITOPSCTL"

func NewRootCmd() *cobra.Command {
	var logFile *os.File

	rootCmd := &cobra.Command{
		Use:   cobrax.RootName,
		Short: "Validate and render the declarative layers of a GitOps infrastructure repository",
		Long: `gitopsctl owns the policy layer of the infrastructure monorepo: cluster topology and node
pool scaling rendered to Terraform, workload manifests rendered from the built-in chart with
layered values, and the ArgoCD applications that sync them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("error while binding flags: %w", err)
			}

			var err error

			logFile, err = logrusx.OpenLogFile(viper.GetString("log"))
			if err != nil {
				return err
			}

			logrusx.InitLog(logFile, viper.GetBool("debug"), viper.GetBool("no-colors"))

			execx.Debug = viper.GetBool("debug")

			logrus.Debugf("running %s", cobrax.GetFullname(cmd))

			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if logFile != nil {
				if err := logFile.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "error while closing log file: %v\n", err)
				}
			}
		},
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().Bool("debug", false, "Enables debug output")
	rootCmd.PersistentFlags().String("log", "", "Path to a file where every log entry is written in JSON")
	rootCmd.PersistentFlags().Bool("no-colors", false, "Disable colors in the output")
	rootCmd.PersistentFlags().StringP("platform", "p", platform.FileName, "Path to the platform definition file")

	versions := app.GetContainerInstance().Versions()

	rootCmd.AddCommand(NewValidateCmd())
	rootCmd.AddCommand(NewRenderCmd())
	rootCmd.AddCommand(NewDiffCmd())
	rootCmd.AddCommand(NewPlanCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewStateCmd())
	rootCmd.AddCommand(NewGraphCmd())
	rootCmd.AddCommand(NewScaffoldCmd())
	rootCmd.AddCommand(NewWatchCmd())
	rootCmd.AddCommand(NewVersionCmd(versions.Map()))
	rootCmd.AddCommand(NewCompletionCmd())

	return rootCmd
}

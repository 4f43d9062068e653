// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/creatium/gitopsctl/internal/terraform"
	execx "github.com/creatium/gitopsctl/internal/x/exec"
)

var ErrPlanSourceReq = errors.New("either --plan or --workdir should be set")

func NewCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Summarize a Terraform plan and fail on destructive or unexpected changes",
		Long: `Summarize a Terraform plan and fail on destructive or unexpected changes.

The plan is read from --plan (the JSON of "terraform show -json" or the text of
"terraform plan"), or produced by running terraform in --workdir.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary, err := summarize(ctx, viper.GetString("plan"), viper.GetString("workdir"), viper.GetString("terraform"))
			if err != nil {
				return err
			}

			if summary.Noop() {
				logrus.Info("No changes, the infrastructure matches the configuration")
			} else {
				printSummary(cmd, summary)
			}

			return summary.Check(terraform.CheckOptions{
				AllowDestroy: viper.GetBool("allow-destroy"),
				ExpectNoop:   viper.GetBool("expect-noop"),
			})
		},
	}

	checkCmd.Flags().String("plan", "", "Path to a saved plan, JSON or text")
	checkCmd.Flags().String("workdir", "", "Terraform working directory to plan, usually rendered/<env>/terraform")
	checkCmd.Flags().String("terraform", "terraform", "Path to the terraform binary")
	checkCmd.Flags().Bool("allow-destroy", false, "Do not fail when the plan destroys or replaces resources")
	checkCmd.Flags().Bool("expect-noop", false, "Fail when the plan holds any change")

	return checkCmd
}

func summarize(ctx context.Context, planFile, workDir, terraformBin string) (terraform.PlanSummary, error) {
	switch {
	case planFile != "" && filepath.Ext(planFile) == ".json":
		p, err := terraform.LoadPlan(planFile)
		if err != nil {
			return terraform.PlanSummary{}, err
		}

		return terraform.Summarize(p), nil

	case planFile != "":
		data, err := os.ReadFile(planFile)
		if err != nil {
			return terraform.PlanSummary{}, fmt.Errorf("error while reading plan %s: %w", planFile, err)
		}

		s, err := terraform.ParsePlanText(string(data))
		if err != nil {
			return terraform.PlanSummary{}, fmt.Errorf("error while parsing plan %s: %w", planFile, err)
		}

		return s, nil

	case workDir != "":
		runner := terraform.NewRunner(execx.NewStdExecutor(), terraform.Paths{
			Terraform: terraformBin,
			WorkDir:   workDir,
		})

		done := make(chan struct{})
		defer close(done)

		go stopOnCancel(ctx, done, runner)

		s := newSpinner()

		logrus.Infof("Running %s init in %s...", runner.CmdPath(), workDir)

		s.Start()

		if err := runner.Init(); err != nil {
			s.Stop()

			return terraform.PlanSummary{}, err
		}

		s.Stop()

		logrus.Info("Planning...")

		s.Start()

		changes, err := runner.Plan()

		s.Stop()

		if err != nil {
			return terraform.PlanSummary{}, err
		}

		if !changes {
			return terraform.PlanSummary{}, nil
		}

		p, err := runner.ShowPlan()
		if err != nil {
			return terraform.PlanSummary{}, err
		}

		return terraform.Summarize(p), nil
	}

	return terraform.PlanSummary{}, ErrPlanSourceReq
}

// stopOnCancel kills the running terraform command when ctx ends before done is closed.
func stopOnCancel(ctx context.Context, done <-chan struct{}, runner *terraform.Runner) {
	select {
	case <-ctx.Done():
		logrus.Warn("Interrupted, stopping terraform...")

		if err := runner.Stop(); err != nil {
			logrus.Error(err)
		}

	case <-done:
	}
}

// The spinner stays off in debug mode, where terraform output goes to the same writer.
func newSpinner() *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(logrus.StandardLogger().Out))

	if viper.GetBool("debug") {
		s.Disable()
	}

	return s
}

func printSummary(cmd *cobra.Command, s terraform.PlanSummary) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Plan: %s\n", s)

	for _, group := range []struct {
		sign  string
		addrs []string
	}{
		{"+", s.Add},
		{"~", s.Change},
		{"-", s.Destroy},
		{"-/+", s.Replace},
	} {
		for _, addr := range group.addrs {
			fmt.Fprintf(out, "  %s %s\n", group.sign, addr)
		}
	}
}

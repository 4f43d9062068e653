// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package terraform

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	tfjson "github.com/hashicorp/terraform-json"
)

const minDiffLineTokensNum = 4

// PlanSummary lists the resource addresses a plan touches, by kind of change.
type PlanSummary struct {
	Add     []string
	Change  []string
	Destroy []string
	Replace []string
}

// Noop tells whether applying the plan would leave the infrastructure untouched.
func (s PlanSummary) Noop() bool {
	return len(s.Add)+len(s.Change)+len(s.Destroy)+len(s.Replace) == 0
}

// Destructive tells whether the plan deletes or recreates anything.
func (s PlanSummary) Destructive() bool {
	return len(s.Destroy)+len(s.Replace) > 0
}

func (s PlanSummary) String() string {
	return fmt.Sprintf(
		"%d to add, %d to change, %d to destroy, %d to replace",
		len(s.Add), len(s.Change), len(s.Destroy), len(s.Replace),
	)
}

func LoadPlan(path string) (*tfjson.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error while reading plan %s: %w", path, err)
	}

	var plan tfjson.Plan

	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("error while decoding plan %s: %w", path, err)
	}

	return &plan, nil
}

// Summarize classifies the resource changes of a JSON plan. Reads and no-ops are ignored.
func Summarize(plan *tfjson.Plan) PlanSummary {
	var s PlanSummary

	for _, rc := range plan.ResourceChanges {
		if rc == nil || rc.Change == nil {
			continue
		}

		a := rc.Change.Actions

		switch {
		case a.Replace():
			s.Replace = append(s.Replace, rc.Address)

		case a.Create():
			s.Add = append(s.Add, rc.Address)

		case a.Update():
			s.Change = append(s.Change, rc.Address)

		case a.Delete():
			s.Destroy = append(s.Destroy, rc.Address)
		}
	}

	sort.Strings(s.Add)
	sort.Strings(s.Change)
	sort.Strings(s.Destroy)
	sort.Strings(s.Replace)

	return s
}

var (
	ErrUnparseablePlan = errors.New(`plan output holds neither "No changes." nor a "Plan:" summary`)
	ErrPlanMismatch    = errors.New("plan summary does not match the listed resources")

	ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	planFooter = regexp.MustCompile(`^Plan: (?:\d+ to import, )?(\d+) to add, (\d+) to change, (\d+) to destroy\.`)
)

// ParsePlanText classifies the resources of a human readable `terraform plan` output, for
// pipelines that only archive the text log. Colors are stripped. The output must end with
// "No changes." or a "Plan:" footer whose counts match the listed resources.
func ParsePlanText(plan string) (PlanSummary, error) {
	var (
		s         PlanSummary
		footer    []string
		noChanges bool
	)

	planLines := strings.Split(ansiEscape.ReplaceAllString(plan, ""), "\n")

	for i, line := range planLines {
		// Diagnostics are boxed with these runes since terraform 1.0.
		line = strings.TrimLeft(strings.TrimSpace(line), "│╷╵ ")

		if strings.HasPrefix(line, "Error:") {
			return PlanSummary{}, fmt.Errorf("%w: %s", ErrPlanFailed, line)
		}

		if strings.HasPrefix(line, "No changes.") {
			noChanges = true

			continue
		}

		if m := planFooter.FindStringSubmatch(line); m != nil {
			footer = m

			continue
		}

		if !strings.HasPrefix(line, "#") || i+1 >= len(planLines) {
			continue
		}

		diffLineTokens := strings.Fields(planLines[i+1])

		if len(diffLineTokens) < minDiffLineTokensNum || diffLineTokens[1] != "resource" {
			continue
		}

		// Drift detected outside of terraform is listed too, it is not part of the plan.
		if strings.HasSuffix(line, " has changed") || strings.HasSuffix(line, " has been deleted") {
			continue
		}

		headerTokens := strings.Fields(strings.TrimPrefix(line, "#"))
		if len(headerTokens) == 0 {
			continue
		}

		address := headerTokens[0]

		switch diffLineTokens[0] {
		case "+":
			s.Add = append(s.Add, address)

		case "-":
			s.Destroy = append(s.Destroy, address)

		case "~":
			s.Change = append(s.Change, address)

		case "-/+", "+/-":
			s.Replace = append(s.Replace, address)
		}
	}

	sort.Strings(s.Add)
	sort.Strings(s.Change)
	sort.Strings(s.Destroy)
	sort.Strings(s.Replace)

	if footer == nil {
		if !noChanges {
			return PlanSummary{}, ErrUnparseablePlan
		}

		if !s.Noop() {
			return s, fmt.Errorf("%w: \"No changes.\" but %s", ErrPlanMismatch, s)
		}

		return s, nil
	}

	// A replacement counts once as an addition and once as a destruction.
	want := [3]int{len(s.Add) + len(s.Replace), len(s.Change), len(s.Destroy) + len(s.Replace)}

	for i, w := range want {
		got, err := strconv.Atoi(footer[i+1])
		if err != nil || got != w {
			return s, fmt.Errorf("%w: %q, parsed %s", ErrPlanMismatch, footer[0], s)
		}
	}

	return s, nil
}

var (
	ErrDestructivePlan = errors.New("plan destroys or replaces resources")
	ErrNotIdempotent   = errors.New("plan is not empty")
)

// CheckOptions is the gate a plan must pass before it is applied unattended.
type CheckOptions struct {
	AllowDestroy bool
	ExpectNoop   bool
}

func (s PlanSummary) Check(opts CheckOptions) error {
	if opts.ExpectNoop && !s.Noop() {
		return fmt.Errorf("%w: %s", ErrNotIdempotent, s)
	}

	if !opts.AllowDestroy && s.Destructive() {
		addrs := make([]string, 0, len(s.Destroy)+len(s.Replace))
		addrs = append(addrs, s.Destroy...)
		addrs = append(addrs, s.Replace...)

		return fmt.Errorf("%w: %s", ErrDestructivePlan, strings.Join(addrs, ", "))
	}

	return nil
}

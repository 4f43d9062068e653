// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diffs

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	r3diff "github.com/r3labs/diff/v3"
)

var (
	numbersToWildcardRegex = regexp.MustCompile(`\.\d+\b`)
	ErrImmutable           = errors.New("immutable value changed")
)

type Checker interface {
	AssertImmutableViolations(diffs r3diff.Changelog, immutablePaths []string) []error
	GenerateDiff() (r3diff.Changelog, error)
	DiffToString(diffs r3diff.Changelog) string
}

type BaseChecker struct {
	CurrentConfig map[string]any
	NewConfig     map[string]any
}

func NewBaseChecker(currentConfig, newConfig map[string]any) *BaseChecker {
	return &BaseChecker{
		CurrentConfig: currentConfig,
		NewConfig:     newConfig,
	}
}

func (v *BaseChecker) GenerateDiff() (r3diff.Changelog, error) {
	changelog, err := r3diff.Diff(v.CurrentConfig, v.NewConfig)
	if err != nil {
		return nil, fmt.Errorf("error while diffing configs: %w", err)
	}

	return changelog, nil
}

// FilterDiffFromPath keeps the changes under the given dotted path prefix.
func (*BaseChecker) FilterDiffFromPath(changelog r3diff.Changelog, prefix string) r3diff.Changelog {
	var filteredChangelog r3diff.Changelog

	for _, diff := range changelog {
		if strings.HasPrefix(JoinPath(diff.Path), prefix) {
			filteredChangelog = append(filteredChangelog, diff)
		}
	}

	return filteredChangelog
}

func (*BaseChecker) DiffToString(diffs r3diff.Changelog) string {
	var sb strings.Builder

	for _, diff := range diffs {
		switch diff.Type {
		case r3diff.CREATE:
			fmt.Fprintf(&sb, "+ %s: %v\n", JoinPath(diff.Path), diff.To)

		case r3diff.DELETE:
			fmt.Fprintf(&sb, "- %s: %v\n", JoinPath(diff.Path), diff.From)

		default:
			fmt.Fprintf(&sb, "~ %s: %v -> %v\n", JoinPath(diff.Path), diff.From, diff.To)
		}
	}

	return sb.String()
}

func (*BaseChecker) AssertImmutableViolations(diffs r3diff.Changelog, immutablePaths []string) []error {
	var errs []error

	for _, diff := range diffs {
		// Creating or removing a whole object is not a change of its immutable fields.
		if diff.Type != r3diff.UPDATE {
			continue
		}

		if isImmutablePathChanged(diff, immutablePaths) {
			errs = append(
				errs,
				fmt.Errorf(
					"%w: path %s oldValue %v newValue %v",
					ErrImmutable,
					JoinPath(diff.Path),
					diff.From,
					diff.To,
				),
			)
		}
	}

	return errs
}

// Deletions returns the changes removing a value present in the current config.
func Deletions(diffs r3diff.Changelog) r3diff.Changelog {
	var out r3diff.Changelog

	for _, diff := range diffs {
		if diff.Type == r3diff.DELETE {
			out = append(out, diff)
		}
	}

	return out
}

func JoinPath(path []string) string {
	return "." + strings.Join(path, ".")
}

func isImmutablePathChanged(change r3diff.Change, immutables []string) bool {
	changePath := numbersToWildcardRegex.ReplaceAllString(JoinPath(change.Path), ".*")

	for _, immutable := range immutables {
		if matchPath(changePath, immutable) {
			return true
		}
	}

	return false
}

// matchPath compares dotted paths segment by segment. Each pattern segment is a path.Match
// pattern and a trailing "**" matches any number of remaining segments.
func matchPath(p, pattern string) bool {
	ps := strings.Split(p, ".")
	qs := strings.Split(pattern, ".")

	if qs[len(qs)-1] == "**" {
		qs = qs[:len(qs)-1]

		if len(ps) < len(qs) {
			return false
		}

		ps = ps[:len(qs)]
	}

	if len(ps) != len(qs) {
		return false
	}

	for i := range ps {
		if qs[i] == "*" {
			continue
		}

		if ok, err := path.Match(qs[i], ps[i]); err != nil || !ok {
			return false
		}
	}

	return true
}

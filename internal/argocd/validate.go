// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argocd

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidMapping     = errors.New("invalid sync mapping")
	ErrDuplicatePath      = errors.New("git path synced by more than one application")
	ErrDuplicateTarget    = errors.New("namespace targeted by more than one application for the same workload")
	ErrDuplicateName      = errors.New("duplicate application name")
	ErrProductionRevision = errors.New("production must track the primary branch")
)

// Validate rejects mappings the controller would fight over, and production mappings that
// could be changed by anything but a merge to the primary branch.
func Validate(mappings []Mapping, primaryBranch string) error {
	var errs []error

	v := validator.New()

	paths := map[string]string{}
	targets := map[string]string{}
	names := map[string]struct{}{}

	for _, m := range mappings {
		if err := v.Struct(m); err != nil {
			errs = append(errs, fmt.Errorf("%w %s: %w", ErrInvalidMapping, m.Name, err))
		}

		if other, ok := paths[m.Path]; ok {
			errs = append(errs, fmt.Errorf("%w: %s is synced by %s and %s", ErrDuplicatePath, m.Path, other, m.Name))
		}

		paths[m.Path] = m.Name

		target := m.Server + "|" + m.Namespace + "|" + m.Name
		if other, ok := targets[target]; ok {
			errs = append(errs, fmt.Errorf("%w: %s/%s (%s)", ErrDuplicateTarget, m.Namespace, m.Name, other))
		}

		targets[target] = m.Path

		if _, ok := names[m.Name]; ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateName, m.Name))
		}

		names[m.Name] = struct{}{}

		if m.Production && m.Revision != primaryBranch {
			errs = append(errs, fmt.Errorf("%w: %s tracks %q, want %q", ErrProductionRevision, m.Name, m.Revision, primaryBranch))
		}
	}

	return errors.Join(errs...)
}

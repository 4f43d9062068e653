// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package santhosh

import (
	"errors"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/exp/slices"
)

// Violations flattens a validation error into "path: message" lines, leaves only.
func Violations(err error) []string {
	var terr *jsonschema.ValidationError

	if !errors.As(err, &terr) {
		return nil
	}

	out := leafViolations(terr)

	slices.Sort(out)

	return slices.Compact(out)
}

func leafViolations(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}

		return []string{loc + ": " + err.Message}
	}

	var out []string
	for _, cause := range err.Causes {
		out = append(out, leafViolations(cause)...)
	}

	return out
}

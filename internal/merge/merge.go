// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import (
	"fmt"
)

type Merger struct {
	base   Mergeable
	custom Mergeable
}

func NewMerger(b, c Mergeable) *Merger {
	return &Merger{
		base:   b,
		custom: c,
	}
}

// Merge overlays the custom section on the base one. A custom model that does not hold the
// section leaves the base untouched.
func (m *Merger) Merge() (map[string]any, error) {
	preparedBase, err := m.base.Get()
	if err != nil {
		return nil, fmt.Errorf("incorrect base file, %w", err)
	}

	preparedCustom, err := m.custom.Get()
	if err != nil {
		return m.base.Content(), nil //nolint:nilerr // a missing custom section is not an error.
	}

	mergedSection := DeepMerge(preparedBase, preparedCustom)

	err = m.base.Walk(mergedSection)

	return m.base.Content(), err
}

// DeepMerge returns a new map holding a overlaid by b: mappings merge key-wise, any other value
// in b replaces the one in a, and a nil value in b removes the key. Neither input is modified.
func DeepMerge(a, b map[string]any) map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = copyValue(v)
	}

	for k, v := range b {
		if v == nil {
			delete(out, k)

			continue
		}

		if v, ok := v.(map[string]any); ok {
			if bv, ok := out[k]; ok {
				if bv, ok := bv.(map[string]any); ok {
					out[k] = DeepMerge(bv, v)

					continue
				}
			}
		}

		out[k] = copyValue(v)
	}

	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return DeepMerge(t, nil)

	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}

		return out

	default:
		return v
	}
}

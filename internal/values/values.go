// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package values

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/creatium/gitopsctl/internal/merge"
	yamlx "github.com/creatium/gitopsctl/internal/x/yaml"
)

var (
	ErrInvalidSet  = errors.New("invalid --set expression, expected key=value")
	ErrNotAMapping = errors.New("value is not a mapping")
)

// Values is a tree of settings as decoded from YAML: mappings are map[string]any.
type Values map[string]any

// Merge overlays o on v. Mappings are merged key by key, every other value replaces the
// previous one and a null value removes the key.
func (v Values) Merge(o Values) (Values, error) {
	base := merge.NewDefaultModel(v.clone(), ".")
	overlay := merge.NewDefaultModel(map[string]any(o), ".")

	out, err := merge.NewMerger(base, overlay).Merge()
	if err != nil {
		return nil, fmt.Errorf("error while merging values: %w", err)
	}

	return Values(out), nil
}

func (v Values) clone() map[string]any {
	return merge.DeepMerge(v, nil)
}

// Lookup walks a dotted path such as "autoscaling.minReplicas".
func (v Values) Lookup(path string) (any, bool) {
	var cur any = map[string]any(v)

	trimmed := strings.Trim(path, ".")
	if trimmed == "" {
		return cur, true
	}

	for _, f := range strings.Split(trimmed, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}

		cur, ok = m[f]
		if !ok {
			return nil, false
		}
	}

	return cur, true
}

func (v Values) String(path string) string {
	x, ok := v.Lookup(path)
	if !ok || x == nil {
		return ""
	}

	if s, ok := x.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", x)
}

func (v Values) Bool(path string) bool {
	x, ok := v.Lookup(path)
	if !ok {
		return false
	}

	switch t := x.(type) {
	case bool:
		return t

	case string:
		b, err := strconv.ParseBool(t)

		return err == nil && b

	default:
		return false
	}
}

func (v Values) Int(path string) int {
	x, ok := v.Lookup(path)
	if !ok {
		return 0
	}

	switch t := x.(type) {
	case int:
		return t

	case int64:
		return int(t)

	case uint64:
		return int(t)

	case float64:
		return int(t)

	case string:
		i, err := strconv.Atoi(t)
		if err != nil {
			return 0
		}

		return i

	default:
		return 0
	}
}

// Map returns the mapping at path, or nil.
func (v Values) Map(path string) map[string]any {
	x, ok := v.Lookup(path)
	if !ok {
		return nil
	}

	m, ok := x.(map[string]any)
	if !ok {
		return nil
	}

	return m
}

// StringMap returns the mapping at path with every leaf rendered as a string.
func (v Values) StringMap(path string) map[string]string {
	m := v.Map(path)
	if len(m) == 0 {
		return nil
	}

	out := make(map[string]string, len(m))
	for k, x := range m {
		out[k] = fmt.Sprintf("%v", x)
	}

	return out
}

// Set assigns value at a dotted path, creating intermediate mappings.
func (v Values) Set(path string, value any) error {
	fs := strings.Split(strings.Trim(path, "."), ".")
	cur := map[string]any(v)

	for _, f := range fs[:len(fs)-1] {
		next, ok := cur[f]
		if !ok || next == nil {
			m := map[string]any{}
			cur[f] = m
			cur = m

			continue
		}

		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotAMapping, f)
		}

		cur = m
	}

	cur[fs[len(fs)-1]] = value

	return nil
}

// ParseSet turns "a.b=c" expressions into a Values overlay. An expression may hold several
// assignments separated by commas, "\," is a literal comma. Right hand sides are decoded as
// YAML scalars, so "true" and "3" keep their types, and an empty one is the empty string.
func ParseSet(exprs []string) (Values, error) {
	out := Values{}

	for _, expr := range exprs {
		for _, e := range splitAssignments(expr) {
			k, raw, ok := strings.Cut(e, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return nil, fmt.Errorf("%w: %q", ErrInvalidSet, e)
			}

			var val any = raw
			if raw != "" {
				if err := yamlx.UnmarshalV3([]byte(raw), &val); err != nil {
					val = raw
				}
			}

			if err := out.Set(strings.TrimSpace(k), val); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}

func splitAssignments(expr string) []string {
	var (
		parts []string
		cur   strings.Builder
	)

	for i := 0; i < len(expr); i++ {
		switch {
		case expr[i] == '\\' && i+1 < len(expr) && expr[i+1] == ',':
			cur.WriteByte(',')
			i++

		case expr[i] == ',':
			parts = append(parts, cur.String())
			cur.Reset()

		default:
			cur.WriteByte(expr[i])
		}
	}

	return append(parts, cur.String())
}

// Decode converts the values into a typed structure through their YAML form.
func Decode[T any](v Values) (T, error) {
	return yamlx.Convert[T](map[string]any(v))
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mapper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	Env  = "env"
	File = "file"
)

// Mapper resolves dynamic values (env://NAME, file://path) inside a template context.
type Mapper struct {
	context map[string]any
	baseDir string
}

func NewMapper(context map[string]any, baseDir string) *Mapper {
	return &Mapper{context: context, baseDir: baseDir}
}

func (m *Mapper) MapDynamicValues() (map[string]any, error) {
	mapped, err := m.inject(m.context)
	if err != nil {
		return nil, err
	}

	res, ok := mapped.(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}

	return res, nil
}

func (m *Mapper) inject(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))

		for k, item := range val {
			res, err := m.inject(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}

			out[k] = res
		}

		return out, nil

	case []any:
		out := make([]any, len(val))

		for i, item := range val {
			res, err := m.inject(item)
			if err != nil {
				return nil, err
			}

			out[i] = res
		}

		return out, nil

	case string:
		return m.resolve(val)

	default:
		return v, nil
	}
}

func (m *Mapper) resolve(s string) (any, error) {
	source, value, found := strings.Cut(s, "://")
	if !found {
		return s, nil
	}

	switch source {
	case Env:
		return os.Getenv(value), nil

	case File:
		path := value
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.baseDir, path)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading dynamic value from %s: %w", path, err)
		}

		return strings.TrimSuffix(string(content), "\n"), nil
	}

	return s, nil
}

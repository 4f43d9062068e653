// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package merge

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errCannotAccessKey = errors.New("cannot access key")
	errInvalidData     = errors.New("data structure is invalid on key")
)

type Mergeable interface {
	Get() (map[string]any, error)
	Walk(map[string]any) error
	Content() map[string]any
	Path() string
}

// DefaultModel exposes the section of content found at a dotted path such as ".spec.values".
// The root path is "." or "".
type DefaultModel struct {
	content map[string]any
	path    string
}

func NewDefaultModel(content map[string]any, path string) *DefaultModel {
	if content == nil {
		content = map[string]any{}
	}

	return &DefaultModel{
		content: content,
		path:    path,
	}
}

func (b *DefaultModel) Content() map[string]any {
	return b.content
}

func (b *DefaultModel) Path() string {
	return b.path
}

func (b *DefaultModel) Get() (map[string]any, error) {
	ret := b.content

	for _, f := range fields(b.path) {
		mapAtKey, ok := ret[f]
		if !ok {
			return nil, fmt.Errorf("%w %s on map", errCannotAccessKey, f)
		}

		ret, ok = mapAtKey.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w %s", errInvalidData, f)
		}
	}

	return ret, nil
}

func (b *DefaultModel) Walk(mergedSection map[string]any) error {
	fs := fields(b.path)

	if len(fs) == 0 {
		b.content = mergedSection

		return nil
	}

	ret := b.content

	for _, f := range fs[:len(fs)-1] {
		next, ok := ret[f]
		if !ok {
			return fmt.Errorf("%w %s on map", errCannotAccessKey, f)
		}

		ret, ok = next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w %s", errInvalidData, f)
		}
	}

	ret[fs[len(fs)-1]] = mergedSection

	return nil
}

func fields(path string) []string {
	trimmed := strings.Trim(path, ".")
	if trimmed == "" {
		return nil
	}

	return strings.Split(trimmed, ".")
}

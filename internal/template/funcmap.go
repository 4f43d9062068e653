// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package template

import (
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	yamlx "github.com/creatium/gitopsctl/internal/x/yaml"
)

type FuncMap struct {
	FuncMap template.FuncMap
}

func NewFuncMap() FuncMap {
	f := FuncMap{FuncMap: sprig.TxtFuncMap()}

	f.Add("toYaml", toYAML)
	f.Add("fromYaml", fromYAML)

	return f
}

func (f *FuncMap) Add(name string, fn any) {
	f.FuncMap[name] = fn
}

func (f *FuncMap) Delete(name string) {
	delete(f.FuncMap, name)
}

func toYAML(v any) string {
	data, err := yamlx.MarshalV3(v)
	if err != nil {
		// Swallow errors inside of a template.
		return ""
	}

	return strings.TrimSuffix(string(data), "\n")
}

func fromYAML(str string) map[string]any {
	m := map[string]any{}

	if err := yamlx.UnmarshalV3([]byte(str), &m); err != nil {
		m["Error"] = err.Error()
	}

	return m
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"bytes"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	sigsyaml "sigs.k8s.io/yaml"
)

type Object interface {
	runtime.Object
	metav1.Object
}

// Manifest is the ordered set of objects of one release.
type Manifest struct {
	Objects []Object
}

func (m *Manifest) Add(o Object) {
	m.Objects = append(m.Objects, o)
}

func Kind(o Object) string {
	return o.GetObjectKind().GroupVersionKind().Kind
}

// Find returns the first object of the given kind, or nil.
func (m *Manifest) Find(kind string) Object {
	for _, o := range m.Objects {
		if Kind(o) == kind {
			return o
		}
	}

	return nil
}

func (m *Manifest) Kinds() []string {
	out := make([]string, 0, len(m.Objects))
	for _, o := range m.Objects {
		out = append(out, Kind(o))
	}

	return out
}

// Documents returns the objects as plain trees, without status and unset fields.
func (m *Manifest) Documents() ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(m.Objects))

	for _, o := range m.Objects {
		var (
			doc map[string]any
			err error
		)

		if u, ok := o.(runtime.Unstructured); ok {
			doc = runtime.DeepCopyJSON(u.UnstructuredContent())
		} else if doc, err = runtime.DefaultUnstructuredConverter.ToUnstructured(o); err != nil {
			return nil, fmt.Errorf("error while converting %s %s: %w", Kind(o), o.GetName(), err)
		}

		delete(doc, "status")

		out = append(out, prune(doc))
	}

	return out, nil
}

func prune(in map[string]any) map[string]any {
	for k, v := range in {
		switch t := v.(type) {
		case nil:
			delete(in, k)

		case map[string]any:
			in[k] = prune(t)

		case []any:
			for i, e := range t {
				if em, ok := e.(map[string]any); ok {
					t[i] = prune(em)
				}
			}
		}
	}

	return in
}

// YAML encodes the manifest as a multi document stream, in render order.
func (m *Manifest) YAML() ([]byte, error) {
	docs, err := m.Documents()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	for _, doc := range docs {
		data, err := sigsyaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("error while encoding manifest: %w", err)
		}

		buf.WriteString("---\n")
		buf.Write(data)
	}

	return buf.Bytes(), nil
}

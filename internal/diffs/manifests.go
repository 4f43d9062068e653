// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diffs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestImmutablePaths are the rendered fields the API server refuses to update in place.
func ManifestImmutablePaths() []string {
	return []string{
		".*.Deployment/*.spec.selector.**",
		".*.PodDisruptionBudget/*.spec.selector.**",
	}
}

// ManifestTree loads every YAML document below dir. Files are keyed by their slash separated
// path without extension, documents by "<kind>/<name>".
func ManifestTree(dir string) (map[string]any, error) {
	tree := map[string]any{}

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || filepath.Ext(p) != ".yaml" {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return fmt.Errorf("error while resolving %s: %w", p, err)
		}

		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("error while reading %s: %w", p, err)
		}

		docs, err := ManifestDocuments(content)
		if err != nil {
			return fmt.Errorf("%s: %w", rel, err)
		}

		tree[strings.TrimSuffix(filepath.ToSlash(rel), ".yaml")] = docs

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error while loading manifests from %s: %w", dir, err)
	}

	return tree, nil
}

// ManifestDocuments decodes a multi document stream keyed by "<kind>/<name>".
func ManifestDocuments(content []byte) (map[string]any, error) {
	docs := map[string]any{}

	dec := yaml.NewDecoder(bytes.NewReader(content))

	for {
		var doc map[string]any

		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("error while decoding manifest: %w", err)
		}

		kind, _ := doc["kind"].(string)
		if kind == "" {
			continue
		}

		name := ""
		if meta, ok := doc["metadata"].(map[string]any); ok {
			name, _ = meta["name"].(string)
		}

		docs[kind+"/"+name] = doc
	}

	return docs, nil
}

// NewManifestChecker compares two rendered directories.
func NewManifestChecker(currentDir, desiredDir string) (*BaseChecker, error) {
	cur, err := ManifestTree(currentDir)
	if err != nil {
		return nil, err
	}

	des, err := ManifestTree(desiredDir)
	if err != nil {
		return nil, err
	}

	return NewBaseChecker(cur, des), nil
}

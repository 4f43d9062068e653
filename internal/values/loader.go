// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package values

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	netx "github.com/creatium/gitopsctl/internal/x/net"
	yamlx "github.com/creatium/gitopsctl/internal/x/yaml"
)

var ErrLayerNotFound = errors.New("values layer not found")

// Layer is one values file in the precedence chain. Later layers win.
type Layer struct {
	Name     string
	Source   string
	Optional bool
}

type Loader struct {
	client netx.Client
}

func NewLoader(client netx.Client) *Loader {
	return &Loader{client: client}
}

// Load merges the layers on top of defaults, in order.
func (l *Loader) Load(defaults Values, layers ...Layer) (Values, error) {
	out, err := Values{}.Merge(defaults)
	if err != nil {
		return nil, err
	}

	for _, layer := range layers {
		content, err := l.read(layer)
		if err != nil {
			return nil, err
		}

		if content == nil {
			logrus.Debugf("values layer %s (%s) not present, skipping", layer.Name, layer.Source)

			continue
		}

		logrus.Debugf("merging values layer %s from %s", layer.Name, layer.Source)

		if out, err = out.Merge(content); err != nil {
			return nil, fmt.Errorf("layer %s: %w", layer.Name, err)
		}
	}

	return out, nil
}

func (l *Loader) read(layer Layer) (Values, error) {
	path := layer.Source

	if netx.IsRemote(layer.Source) {
		dir, err := os.MkdirTemp("", "gitopsctl-values-")
		if err != nil {
			return nil, fmt.Errorf("error while creating temporary directory: %w", err)
		}

		defer os.RemoveAll(dir)

		path = filepath.Join(dir, "values.yaml")

		if err := l.client.Download(layer.Source, path); err != nil {
			if layer.Optional {
				logrus.Debugf("optional values layer %s could not be fetched: %v", layer.Name, err)

				return nil, nil
			}

			return nil, fmt.Errorf("error while fetching values layer %s: %w", layer.Name, err)
		}
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if layer.Optional {
				return nil, nil
			}

			return nil, fmt.Errorf("%w: %s (%s)", ErrLayerNotFound, layer.Name, layer.Source)
		}

		return nil, fmt.Errorf("error while reading values layer %s: %w", layer.Name, err)
	}

	content, err := yamlx.FromFileV3[map[string]any](path)
	if err != nil {
		return nil, fmt.Errorf("error while decoding values layer %s: %w", layer.Name, err)
	}

	if content == nil {
		content = map[string]any{}
	}

	return Values(content), nil
}

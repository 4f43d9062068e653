// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"embed"
	"errors"
	"fmt"
	"path"

	"github.com/santhosh-tekuri/jsonschema/v5"
	helmchart "helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/chartutil"

	"github.com/creatium/gitopsctl/internal/schema/santhosh"
	"github.com/creatium/gitopsctl/internal/values"
	yamlx "github.com/creatium/gitopsctl/internal/x/yaml"
)

const (
	chartFile  = "Chart.yaml"
	valuesFile = "values.yaml"
	schemaFile = "values.schema.json"
)

var (
	ErrNotAChart      = errors.New("not a chart directory")
	ErrMissingSchema  = errors.New("chart has no values schema")
	ErrInvalidRelease = errors.New("invalid release name")

	//go:embed files
	files embed.FS
)

type Chart struct {
	Metadata *helmchart.Metadata
	Defaults values.Values
	Schema   *jsonschema.Schema
}

// Load returns the workload chart shipped with the binary.
func Load() (*Chart, error) {
	bufs := make([]*loader.BufferedFile, 0, 3)

	for _, name := range []string{chartFile, valuesFile, schemaFile} {
		data, err := files.ReadFile(path.Join("files", name))
		if err != nil {
			return nil, fmt.Errorf("error while reading embedded chart file %s: %w", name, err)
		}

		bufs = append(bufs, &loader.BufferedFile{Name: name, Data: data})
	}

	hc, err := loader.LoadFiles(bufs)
	if err != nil {
		return nil, fmt.Errorf("error while loading embedded chart: %w", err)
	}

	return fromHelm(hc)
}

// LoadDir loads a chart from disk, for repositories shipping their own workload chart.
func LoadDir(dir string) (*Chart, error) {
	ok, err := chartutil.IsChartDir(dir)
	if !ok {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotAChart, dir, err)
	}

	hc, err := loader.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error while loading chart from %s: %w", dir, err)
	}

	return fromHelm(hc)
}

func fromHelm(hc *helmchart.Chart) (*Chart, error) {
	if len(hc.Schema) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingSchema, hc.Name())
	}

	schema, err := santhosh.CompileSchema(schemaFile, hc.Schema)
	if err != nil {
		return nil, err
	}

	defaults := values.Values{}

	for _, f := range hc.Raw {
		if f.Name != valuesFile {
			continue
		}

		if err := yamlx.UnmarshalV3(f.Data, &defaults); err != nil {
			return nil, fmt.Errorf("error while decoding chart defaults: %w", err)
		}
	}

	return &Chart{
		Metadata: hc.Metadata,
		Defaults: defaults,
		Schema:   schema,
	}, nil
}

// SupportsKubeVersion checks the cluster version against the chart kubeVersion constraint.
func (c *Chart) SupportsKubeVersion(version string) bool {
	if c.Metadata.KubeVersion == "" {
		return true
	}

	return chartutil.IsCompatibleRange(c.Metadata.KubeVersion, version)
}

func ValidateReleaseName(release string) error {
	if err := chartutil.ValidateReleaseName(release); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidRelease, release, err)
	}

	return nil
}

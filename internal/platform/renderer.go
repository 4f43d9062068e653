// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package platform

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	appsv1 "k8s.io/api/apps/v1"

	"github.com/creatium/gitopsctl/internal/argocd"
	"github.com/creatium/gitopsctl/internal/chart"
	"github.com/creatium/gitopsctl/internal/terraform"
	"github.com/creatium/gitopsctl/internal/topology"
	"github.com/creatium/gitopsctl/internal/values"
	iox "github.com/creatium/gitopsctl/internal/x/io"
	netx "github.com/creatium/gitopsctl/internal/x/net"
)

var (
	ErrUnschedulable      = errors.New("no node pool can run the workload")
	ErrUnsupportedCluster = errors.New("cluster version not supported by the workload chart")
	ErrNoWorkload         = errors.New("manifest holds no Deployment")
)

// Renderer produces every rendered artifact of a platform. Topologies and charts are loaded
// once and reused.
type Renderer struct {
	platform  *Platform
	loader    *values.Loader
	overrides values.Values

	topologies map[string]topology.Environment
	charts     map[string]*chart.Chart
}

func NewRenderer(p *Platform, client netx.Client) *Renderer {
	return &Renderer{
		platform:   p,
		loader:     values.NewLoader(client),
		topologies: map[string]topology.Environment{},
		charts:     map[string]*chart.Chart{},
	}
}

// WithOverrides applies values on top of every layer, for one-off renders.
func (r *Renderer) WithOverrides(v values.Values) *Renderer {
	r.overrides = v

	return r
}

func (r *Renderer) Topology(env string) (topology.Environment, error) {
	if t, ok := r.topologies[env]; ok {
		return t, nil
	}

	t, err := topology.Load(r.platform.ClusterFile(env))
	if err != nil {
		return topology.Environment{}, fmt.Errorf("environment %s: %w", env, err)
	}

	t.Name = env
	r.topologies[env] = t

	return t, nil
}

func (r *Renderer) Chart(svc Service) (*chart.Chart, error) {
	if c, ok := r.charts[svc.Chart]; ok {
		return c, nil
	}

	var (
		c   *chart.Chart
		err error
	)

	if svc.Chart == "" {
		c, err = chart.Load()
	} else {
		c, err = chart.LoadDir(filepath.Join(r.platform.Root, svc.Chart))
	}

	if err != nil {
		return nil, err
	}

	r.charts[svc.Chart] = c

	return c, nil
}

// Layers lists the values files of a service in an environment, lowest precedence first.
func (r *Renderer) Layers(svc Service, env Environment) []values.Layer {
	layers := []values.Layer{
		{Name: "environment", Source: r.platform.EnvValuesFile(env.Name), Optional: true},
		{Name: "service", Source: r.platform.ServiceValuesFile(svc.Name), Optional: true},
	}

	for i, src := range svc.ValuesFrom {
		layers = append(layers, values.Layer{Name: fmt.Sprintf("service-source-%d", i), Source: src})
	}

	return append(layers, values.Layer{
		Name:     "service-environment",
		Source:   r.platform.ServiceEnvValuesFile(svc.Name, env.Name),
		Optional: true,
	})
}

// Values returns the merged values of a service in an environment.
func (r *Renderer) Values(svc Service, env Environment) (values.Values, error) {
	c, err := r.Chart(svc)
	if err != nil {
		return nil, err
	}

	defaults := c.Defaults
	if env.Tier != "" {
		if defaults, err = defaults.Merge(values.Values{"tier": env.Tier}); err != nil {
			return nil, err
		}
	}

	v, err := r.loader.Load(defaults, r.Layers(svc, env)...)
	if err != nil {
		return nil, fmt.Errorf("service %s in %s: %w", svc.Name, env.Name, err)
	}

	if len(r.overrides) > 0 {
		return v.Merge(r.overrides)
	}

	return v, nil
}

// Release is the release name of a service: the declared one or the environment cluster name.
func (r *Renderer) Release(svc Service, env Environment) (string, error) {
	if svc.Release != "" {
		return svc.Release, nil
	}

	t, err := r.Topology(env.Name)
	if err != nil {
		return "", err
	}

	return t.Cluster.Name, nil
}

func (r *Renderer) Manifest(svc Service, env Environment) (*chart.Manifest, error) {
	c, err := r.Chart(svc)
	if err != nil {
		return nil, err
	}

	v, err := r.Values(svc, env)
	if err != nil {
		return nil, err
	}

	release, err := r.Release(svc, env)
	if err != nil {
		return nil, err
	}

	m, err := c.Render(chart.Options{Release: release, Namespace: svc.Namespace, Name: svc.Name}, v)
	if err != nil {
		return nil, fmt.Errorf("service %s in %s: %w", svc.Name, env.Name, err)
	}

	return m, nil
}

func (r *Renderer) Applications(env Environment) []argocd.Application {
	var apps []argocd.Application

	for _, m := range r.platform.Mappings() {
		if m.Environment == env.Name {
			apps = append(apps, argocd.New(r.platform.RepoURL, m))
		}
	}

	return apps
}

// Validate checks the whole platform and reports every problem found.
func (r *Renderer) Validate() error {
	var errs []error

	for _, env := range r.platform.Environments {
		t, err := r.Topology(env.Name)
		if err != nil {
			errs = append(errs, err)

			continue
		}

		if err := topology.Validate(t); err != nil {
			errs = append(errs, fmt.Errorf("environment %s: %w", env.Name, err))
		}

		for _, svc := range r.platform.ServicesIn(env.Name) {
			errs = append(errs, r.validateService(svc, env, t)...)
		}
	}

	if err := argocd.Validate(r.platform.Mappings(), r.platform.PrimaryBranch); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ValidateService checks the values, rendering and placement of a service in an environment.
func (r *Renderer) ValidateService(svc Service, env Environment) error {
	t, err := r.Topology(env.Name)
	if err != nil {
		return err
	}

	return errors.Join(r.validateService(svc, env, t)...)
}

func (r *Renderer) validateService(svc Service, env Environment, t topology.Environment) []error {
	var errs []error

	c, err := r.Chart(svc)
	if err != nil {
		return []error{err}
	}

	if !c.SupportsKubeVersion(t.Cluster.Version) {
		errs = append(errs, fmt.Errorf("%w: service %s in %s: %s does not satisfy %s",
			ErrUnsupportedCluster, svc.Name, env.Name, t.Cluster.Version, c.Metadata.KubeVersion))
	}

	m, err := r.Manifest(svc, env)
	if err != nil {
		return append(errs, err)
	}

	pl, err := placementOf(m)
	if err != nil {
		return append(errs, fmt.Errorf("service %s in %s: %w", svc.Name, env.Name, err))
	}

	if len(topology.Place(t, pl)) == 0 {
		errs = append(errs, fmt.Errorf("%w: service %s in %s selects %v",
			ErrUnschedulable, svc.Name, env.Name, pl.NodeSelector))
	}

	return errs
}

// Artifact selects what a render writes.
type Artifact string

const (
	ArtifactAll       Artifact = "all"
	ArtifactTerraform Artifact = "terraform"
	ArtifactManifests Artifact = "manifests"
	ArtifactArgoCD    Artifact = "argocd"
)

var ErrUnknownArtifact = errors.New("unknown artifact")

func ParseArtifact(s string) (Artifact, error) {
	switch a := Artifact(s); a {
	case ArtifactAll, ArtifactTerraform, ArtifactManifests, ArtifactArgoCD:
		return a, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownArtifact, s)
}

// Placement returns the scheduling constraints of the rendered workload of a service.
func (r *Renderer) Placement(svc Service, env Environment) (topology.Placement, error) {
	m, err := r.Manifest(svc, env)
	if err != nil {
		return topology.Placement{}, err
	}

	return placementOf(m)
}

func placementOf(m *chart.Manifest) (topology.Placement, error) {
	d, ok := m.Find("Deployment").(*appsv1.Deployment)
	if !ok {
		return topology.Placement{}, ErrNoWorkload
	}

	return topology.Placement{
		NodeSelector: d.Spec.Template.Spec.NodeSelector,
		Tolerations:  d.Spec.Template.Spec.Tolerations,
	}, nil
}

// RenderAll writes terraform, manifests and applications of every environment under outDir
// and returns the written files.
func (r *Renderer) RenderAll(outDir string) ([]string, error) {
	return r.Render(outDir, ArtifactAll, r.platform.Environments...)
}

// RenderEnvironment writes every artifact of a single environment.
func (r *Renderer) RenderEnvironment(outDir string, env Environment) ([]string, error) {
	return r.Render(outDir, ArtifactAll, env)
}

// Render writes the selected artifacts of the given environments. outDir stands for the
// repository rendered directory.
func (r *Renderer) Render(outDir string, artifact Artifact, envs ...Environment) ([]string, error) {
	var written []string

	for _, env := range envs {
		steps := []func(string, Environment) ([]string, error){}

		if artifact == ArtifactAll || artifact == ArtifactTerraform {
			steps = append(steps, r.renderTerraform)
		}

		if artifact == ArtifactAll || artifact == ArtifactManifests {
			steps = append(steps, r.renderManifests)
		}

		if artifact == ArtifactAll || artifact == ArtifactArgoCD {
			steps = append(steps, r.renderApplications)
		}

		for _, step := range steps {
			files, err := step(outDir, env)
			written = append(written, files...)

			if err != nil {
				return written, err
			}
		}
	}

	return written, nil
}

func (r *Renderer) local(outDir, repoPath string) string {
	rel, err := filepath.Rel(r.platform.RenderedDir, filepath.FromSlash(repoPath))
	if err != nil {
		rel = repoPath
	}

	return filepath.Join(outDir, rel)
}

func (r *Renderer) renderTerraform(outDir string, env Environment) ([]string, error) {
	t, err := r.Topology(env.Name)
	if err != nil {
		return nil, err
	}

	logrus.Infof("Rendering terraform for %s...", env.Name)

	tf, err := terraform.Write(r.local(outDir, r.platform.TerraformPath(env.Name)), t)
	if err != nil {
		return nil, err
	}

	return []string{tf}, nil
}

func (r *Renderer) renderManifests(outDir string, env Environment) ([]string, error) {
	var written []string

	for _, svc := range r.platform.ServicesIn(env.Name) {
		logrus.Infof("Rendering %s for %s...", svc.Name, env.Name)

		m, err := r.Manifest(svc, env)
		if err != nil {
			return written, err
		}

		out, err := m.YAML()
		if err != nil {
			return written, err
		}

		target := filepath.Join(r.local(outDir, r.platform.ManifestPath(env.Name, svc.Name)), ManifestFile)
		if err := iox.WriteFile(target, out); err != nil {
			return written, err
		}

		written = append(written, target)
	}

	return written, nil
}

func (r *Renderer) renderApplications(outDir string, env Environment) ([]string, error) {
	var written []string

	logrus.Infof("Rendering applications for %s...", env.Name)

	for _, app := range r.Applications(env) {
		out, err := app.YAML()
		if err != nil {
			return written, err
		}

		target := filepath.Join(r.local(outDir, r.platform.ApplicationsPath(env.Name)), app.Name+".yaml")
		if err := iox.WriteFile(target, out); err != nil {
			return written, err
		}

		written = append(written, target)
	}

	root := argocd.Root(r.platform.RepoURL, r.platform.RootMapping(env))

	out, err := root.YAML()
	if err != nil {
		return written, err
	}

	target := filepath.Join(r.local(outDir, r.platform.RootsPath()), env.Name+".yaml")
	if err := iox.WriteFile(target, out); err != nil {
		return written, err
	}

	return append(written, target), nil
}

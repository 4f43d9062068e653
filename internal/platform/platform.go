// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package platform

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slices"

	"github.com/creatium/gitopsctl/internal/argocd"
	yamlx "github.com/creatium/gitopsctl/internal/x/yaml"
)

const (
	FileName             = "platform.yaml"
	DefaultPrimaryBranch = "main"
	DefaultRenderedDir   = "rendered"

	EnvironmentsDir = "environments"
	ServicesDir     = "services"
	ClusterFile     = "cluster.yaml"
	ValuesFile      = "values.yaml"
	ManifestFile    = "manifest.yaml"
	TerraformDir    = "terraform"
	ArgoCDDir       = "argocd"
	RootsDir        = "roots"
)

var (
	ErrInvalidPlatform    = errors.New("invalid platform definition")
	ErrUnknownEnvironment = errors.New("unknown environment")
	ErrUnknownService     = errors.New("unknown service")
	ErrReservedName       = errors.New("name is reserved by the rendered layout")
	ErrDuplicateName      = errors.New("duplicate name")
)

type Platform struct {
	RepoURL       string        `yaml:"repoURL"                validate:"required,url"`
	PrimaryBranch string        `yaml:"primaryBranch,omitempty"`
	RenderedDir   string        `yaml:"renderedDir,omitempty"`
	Environments  []Environment `yaml:"environments"           validate:"required,min=1,dive"`
	Services      []Service     `yaml:"services,omitempty"     validate:"dive"`

	// Root is the repository directory platform.yaml was loaded from.
	Root string `yaml:"-"`
}

type Environment struct {
	Name       string `yaml:"name"                 validate:"required,max=63,hostname_rfc1123"`
	Tier       string `yaml:"tier,omitempty"`
	Production bool   `yaml:"production,omitempty"`
	Server     string `yaml:"server,omitempty"`
	Revision   string `yaml:"revision,omitempty"`
}

type Service struct {
	Name         string   `yaml:"name"                   validate:"required,max=53,hostname_rfc1123"`
	Release      string   `yaml:"release,omitempty"`
	Namespace    string   `yaml:"namespace"              validate:"required,max=63,hostname_rfc1123"`
	Environments []string `yaml:"environments,omitempty"`
	ValuesFrom   []string `yaml:"valuesFrom,omitempty"`
	Chart        string   `yaml:"chart,omitempty"`
}

// Load reads platform.yaml and fills its defaults.
func Load(file string) (*Platform, error) {
	p, err := yamlx.FromFileV3[Platform](file)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("error while resolving %s: %w", file, err)
	}

	p.Root = filepath.Dir(abs)

	if p.PrimaryBranch == "" {
		p.PrimaryBranch = DefaultPrimaryBranch
	}

	if p.RenderedDir == "" {
		p.RenderedDir = DefaultRenderedDir
	}

	for i := range p.Environments {
		if p.Environments[i].Server == "" {
			p.Environments[i].Server = argocd.InClusterServer
		}

		if p.Environments[i].Revision == "" {
			p.Environments[i].Revision = p.PrimaryBranch
		}
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (p *Platform) validate() error {
	var errs []error

	if err := validator.New().Struct(p); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidPlatform, err))
	}

	envs := map[string]struct{}{}

	for _, e := range p.Environments {
		if e.Name == ArgoCDDir || e.Name == RootsDir {
			errs = append(errs, fmt.Errorf("%w: environment %s", ErrReservedName, e.Name))
		}

		if _, ok := envs[e.Name]; ok {
			errs = append(errs, fmt.Errorf("%w: environment %s", ErrDuplicateName, e.Name))
		}

		envs[e.Name] = struct{}{}
	}

	svcs := map[string]struct{}{}

	for _, s := range p.Services {
		if s.Name == TerraformDir {
			errs = append(errs, fmt.Errorf("%w: service %s", ErrReservedName, s.Name))
		}

		if _, ok := svcs[s.Name]; ok {
			errs = append(errs, fmt.Errorf("%w: service %s", ErrDuplicateName, s.Name))
		}

		svcs[s.Name] = struct{}{}

		for _, e := range s.Environments {
			if _, ok := envs[e]; !ok {
				errs = append(errs, fmt.Errorf("%w %q for service %s", ErrUnknownEnvironment, e, s.Name))
			}
		}
	}

	return errors.Join(errs...)
}

func (p *Platform) Environment(name string) (Environment, error) {
	for _, e := range p.Environments {
		if e.Name == name {
			return e, nil
		}
	}

	return Environment{}, fmt.Errorf("%w: %s", ErrUnknownEnvironment, name)
}

func (p *Platform) Service(name string) (Service, error) {
	for _, s := range p.Services {
		if s.Name == name {
			return s, nil
		}
	}

	return Service{}, fmt.Errorf("%w: %s", ErrUnknownService, name)
}

// Deploys tells whether the service runs in the environment. Services without an explicit
// list run everywhere.
func (s Service) Deploys(env string) bool {
	return len(s.Environments) == 0 || slices.Contains(s.Environments, env)
}

// ServicesIn returns the services running in env, in declaration order.
func (p *Platform) ServicesIn(env string) []Service {
	var out []Service

	for _, s := range p.Services {
		if s.Deploys(env) {
			out = append(out, s)
		}
	}

	return out
}

func (p *Platform) EnvironmentDir(env string) string {
	return filepath.Join(p.Root, EnvironmentsDir, env)
}

func (p *Platform) ClusterFile(env string) string {
	return filepath.Join(p.EnvironmentDir(env), ClusterFile)
}

func (p *Platform) EnvValuesFile(env string) string {
	return filepath.Join(p.EnvironmentDir(env), ValuesFile)
}

func (p *Platform) ServiceDir(svc string) string {
	return filepath.Join(p.Root, ServicesDir, svc)
}

func (p *Platform) ServiceValuesFile(svc string) string {
	return filepath.Join(p.ServiceDir(svc), ValuesFile)
}

func (p *Platform) ServiceEnvValuesFile(svc, env string) string {
	return filepath.Join(p.ServiceDir(svc), fmt.Sprintf("values-%s.yaml", env))
}

// ManifestPath is the repository relative directory the sync controller watches for a
// service in an environment.
func (p *Platform) ManifestPath(env, svc string) string {
	return path.Join(p.RenderedDir, env, svc)
}

func (p *Platform) TerraformPath(env string) string {
	return path.Join(p.RenderedDir, env, TerraformDir)
}

func (p *Platform) ApplicationsPath(env string) string {
	return path.Join(p.RenderedDir, ArgoCDDir, env)
}

func (p *Platform) RootsPath() string {
	return path.Join(p.RenderedDir, ArgoCDDir, RootsDir)
}

// Mappings lists every Git path to namespace binding of the platform.
func (p *Platform) Mappings() []argocd.Mapping {
	var out []argocd.Mapping

	for _, e := range p.Environments {
		for _, s := range p.ServicesIn(e.Name) {
			out = append(out, argocd.Mapping{
				Name:        s.Name + "-" + e.Name,
				Environment: e.Name,
				Path:        p.ManifestPath(e.Name, s.Name),
				Namespace:   s.Namespace,
				Server:      e.Server,
				Revision:    e.Revision,
				Production:  e.Production,
			})
		}
	}

	return out
}

// RootMapping is the app-of-apps binding of an environment.
func (p *Platform) RootMapping(e Environment) argocd.Mapping {
	return argocd.Mapping{
		Name:        e.Name + "-root",
		Environment: e.Name,
		Path:        p.ApplicationsPath(e.Name),
		Namespace:   argocd.Namespace,
		Server:      argocd.InClusterServer,
		Revision:    e.Revision,
		Production:  e.Production,
	}
}

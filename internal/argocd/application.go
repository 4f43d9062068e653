// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package argocd

import (
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	sigsyaml "sigs.k8s.io/yaml"
)

const (
	APIVersion      = "argoproj.io/v1alpha1"
	Kind            = "Application"
	Namespace       = "argocd"
	DefaultProject  = "default"
	InClusterServer = "https://kubernetes.default.svc"
	Finalizer       = "resources-finalizer.argocd.argoproj.io"

	EnvironmentLabel = "gitopsctl.io/environment"
	ProductionLabel  = "gitopsctl.io/production"
)

type Application struct {
	metav1.TypeMeta `json:",inline"`
	Metadata        `json:"metadata"`

	Spec ApplicationSpec `json:"spec"`
}

type Metadata struct {
	Name        string            `json:"name"`
	Namespace   string            `json:"namespace"`
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
	Finalizers  []string          `json:"finalizers,omitempty"`
}

type ApplicationSpec struct {
	Project     string      `json:"project"`
	Source      Source      `json:"source"`
	Destination Destination `json:"destination"`
	SyncPolicy  *SyncPolicy `json:"syncPolicy,omitempty"`
}

type Source struct {
	RepoURL        string     `json:"repoURL"`
	Path           string     `json:"path"`
	TargetRevision string     `json:"targetRevision"`
	Directory      *Directory `json:"directory,omitempty"`
}

type Directory struct {
	Recurse bool `json:"recurse,omitempty"`
}

type Destination struct {
	Server    string `json:"server"`
	Namespace string `json:"namespace"`
}

type SyncPolicy struct {
	Automated   *Automated `json:"automated,omitempty"`
	SyncOptions []string   `json:"syncOptions,omitempty"`
}

type Automated struct {
	Prune    bool `json:"prune"`
	SelfHeal bool `json:"selfHeal"`
}

// Mapping binds a Git path to the namespace it is synced into.
type Mapping struct {
	Name        string `validate:"required,max=63,hostname_rfc1123"`
	Environment string `validate:"required"`
	Path        string `validate:"required"`
	Namespace   string `validate:"required,max=63,hostname_rfc1123"`
	Server      string `validate:"required,url"`
	Revision    string `validate:"required"`
	Production  bool
}

// New returns the Application syncing one mapping. Sync is automated: the controller prunes
// what left Git and reverts manual drift.
func New(repoURL string, m Mapping) Application {
	return Application{
		TypeMeta: metav1.TypeMeta{APIVersion: APIVersion, Kind: Kind},
		Metadata: Metadata{
			Name:       m.Name,
			Namespace:  Namespace,
			Finalizers: []string{Finalizer},
			Labels: map[string]string{
				EnvironmentLabel: m.Environment,
				ProductionLabel:  fmt.Sprintf("%t", m.Production),
			},
		},
		Spec: ApplicationSpec{
			Project: DefaultProject,
			Source: Source{
				RepoURL:        repoURL,
				Path:           m.Path,
				TargetRevision: m.Revision,
			},
			Destination: Destination{
				Server:    m.Server,
				Namespace: m.Namespace,
			},
			SyncPolicy: &SyncPolicy{
				Automated:   &Automated{Prune: true, SelfHeal: true},
				SyncOptions: []string{"CreateNamespace=true"},
			},
		},
	}
}

// Root returns the app-of-apps of an environment: it syncs the directory holding the
// environment's Application files into the controller namespace.
func Root(repoURL string, m Mapping) Application {
	app := New(repoURL, m)

	app.Spec.Destination.Server = InClusterServer
	app.Spec.Destination.Namespace = Namespace
	app.Spec.Source.Directory = &Directory{Recurse: true}
	app.Spec.SyncPolicy.SyncOptions = nil

	return app
}

func (a Application) YAML() ([]byte, error) {
	out, err := sigsyaml.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("error while encoding application %s: %w", a.Name, err)
	}

	return out, nil
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

// Config is the typed view of the merged values the workload is rendered from.
type Config struct {
	NameOverride     string `yaml:"nameOverride"`
	FullnameOverride string `yaml:"fullnameOverride"`

	Team       string `yaml:"team"`
	Tier       string `yaml:"tier"`
	CostCenter string `yaml:"costCenter"`
	NodePool   string `yaml:"nodePool"`

	ReplicaCount     int32    `yaml:"replicaCount"`
	Image            Image    `yaml:"image"`
	ImagePullSecrets []string `yaml:"imagePullSecrets"`

	ServiceAccount ServiceAccount    `yaml:"serviceAccount"`
	PodAnnotations map[string]string `yaml:"podAnnotations"`
	PodLabels      map[string]string `yaml:"podLabels"`

	ContainerPort  int32     `yaml:"containerPort"`
	Env            []EnvVar  `yaml:"env"`
	Resources      Resources `yaml:"resources"`
	LivenessProbe  Probe     `yaml:"livenessProbe"`
	ReadinessProbe Probe     `yaml:"readinessProbe"`

	Service             Service             `yaml:"service"`
	Ingress             Ingress             `yaml:"ingress"`
	Autoscaling         Autoscaling         `yaml:"autoscaling"`
	PodDisruptionBudget PodDisruptionBudget `yaml:"podDisruptionBudget"`
	Metrics             Metrics             `yaml:"metrics"`
}

type Image struct {
	Repository string `yaml:"repository"`
	Tag        string `yaml:"tag"`
	PullPolicy string `yaml:"pullPolicy"`
}

type ServiceAccount struct {
	Create      bool              `yaml:"create"`
	Name        string            `yaml:"name"`
	Annotations map[string]string `yaml:"annotations"`
}

type EnvVar struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type Resources struct {
	Requests map[string]string `yaml:"requests"`
	Limits   map[string]string `yaml:"limits"`
}

type Probe struct {
	Path                string `yaml:"path"`
	InitialDelaySeconds int32  `yaml:"initialDelaySeconds"`
	PeriodSeconds       int32  `yaml:"periodSeconds"`
	TimeoutSeconds      int32  `yaml:"timeoutSeconds"`
	FailureThreshold    int32  `yaml:"failureThreshold"`
}

type Service struct {
	Enabled bool   `yaml:"enabled"`
	Type    string `yaml:"type"`
	Port    int32  `yaml:"port"`
}

type Ingress struct {
	Enabled     bool              `yaml:"enabled"`
	ClassName   string            `yaml:"className"`
	Annotations map[string]string `yaml:"annotations"`
	Host        string            `yaml:"host"`
	Path        string            `yaml:"path"`
	TLS         IngressTLS        `yaml:"tls"`
}

type IngressTLS struct {
	Enabled    bool   `yaml:"enabled"`
	SecretName string `yaml:"secretName"`
}

type Autoscaling struct {
	Enabled                           bool  `yaml:"enabled"`
	MinReplicas                       int32 `yaml:"minReplicas"`
	MaxReplicas                       int32 `yaml:"maxReplicas"`
	TargetCPUUtilizationPercentage    int32 `yaml:"targetCPUUtilizationPercentage"`
	TargetMemoryUtilizationPercentage int32 `yaml:"targetMemoryUtilizationPercentage"`
}

// PodDisruptionBudget takes either an absolute number or a percentage; maxUnavailable wins
// over minAvailable when both are set.
type PodDisruptionBudget struct {
	Enabled        bool `yaml:"enabled"`
	MinAvailable   any  `yaml:"minAvailable"`
	MaxUnavailable any  `yaml:"maxUnavailable"`
}

type Metrics struct {
	Enabled        bool           `yaml:"enabled"`
	Port           int32          `yaml:"port"`
	Path           string         `yaml:"path"`
	ServiceMonitor ServiceMonitor `yaml:"serviceMonitor"`
}

type ServiceMonitor struct {
	Enabled  bool   `yaml:"enabled"`
	Interval string `yaml:"interval"`
}

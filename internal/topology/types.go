// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package topology models the cluster side of an environment: one managed Kubernetes cluster,
// its node pools and the firewall in front of the nodes.
package topology

import (
	corev1 "k8s.io/api/core/v1"
)

type PoolClass string

const (
	// PoolClassGeneral hosts stateless APIs and workers.
	PoolClassGeneral PoolClass = "general"
	// PoolClassCompute hosts resource intensive inference and processing; tainted.
	PoolClassCompute PoolClass = "compute"
	// PoolClassSystem hosts ingress controllers, metrics and the GitOps controller.
	PoolClassSystem PoolClass = "system"

	// PoolClassLabel is the node label workloads select a pool class with.
	PoolClassLabel = "gitopsctl.io/pool-class"
	// PoolNameLabel carries the pool name on every node of the pool.
	PoolNameLabel = "gitopsctl.io/pool"
)

func PoolClasses() []PoolClass {
	return []PoolClass{PoolClassGeneral, PoolClassCompute, PoolClassSystem}
}

type Environment struct {
	Name      string     `yaml:"name"              validate:"required,hostname_rfc1123"`
	Cluster   Cluster    `yaml:"cluster"`
	NodePools []NodePool `yaml:"nodePools"         validate:"required,min=1,dive"`
	Firewall  Firewall   `yaml:"firewall"`
	Backend   Backend    `yaml:"backend"`
	Tags      []string   `yaml:"tags,omitempty"`
}

type Cluster struct {
	Name              string             `yaml:"name"                        validate:"required,max=63,hostname_rfc1123"`
	Region            string             `yaml:"region"                      validate:"required"`
	Version           string             `yaml:"version"                     validate:"required"`
	VPC               string             `yaml:"vpc,omitempty"`
	HA                bool               `yaml:"ha,omitempty"`
	AutoUpgrade       bool               `yaml:"autoUpgrade,omitempty"`
	SurgeUpgrade      bool               `yaml:"surgeUpgrade,omitempty"`
	MaintenanceWindow *MaintenanceWindow `yaml:"maintenanceWindow,omitempty"`
}

type MaintenanceWindow struct {
	Day       string `yaml:"day"       validate:"required,oneof=any monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `yaml:"startTime" validate:"required"`
}

type NodePool struct {
	Name      string            `yaml:"name"                validate:"required,max=63,hostname_rfc1123"`
	Class     PoolClass         `yaml:"class"               validate:"required,oneof=general compute system"`
	Size      string            `yaml:"size"                validate:"required"`
	NodeCount int               `yaml:"nodeCount,omitempty" validate:"gte=0"`
	Autoscale Autoscale         `yaml:"autoscale,omitempty"`
	Labels    map[string]string `yaml:"labels,omitempty"`
	Taints    []Taint           `yaml:"taints,omitempty"    validate:"dive"`
	Tags      []string          `yaml:"tags,omitempty"`
}

type Autoscale struct {
	Enabled  bool `yaml:"enabled"`
	MinNodes int  `yaml:"minNodes,omitempty" validate:"gte=0"`
	MaxNodes int  `yaml:"maxNodes,omitempty" validate:"gte=0"`
}

type Taint struct {
	Key    string `yaml:"key"             validate:"required"`
	Value  string `yaml:"value,omitempty"`
	Effect string `yaml:"effect"          validate:"required,oneof=NoSchedule PreferNoSchedule NoExecute"`
}

func (t Taint) Core() corev1.Taint {
	return corev1.Taint{
		Key:    t.Key,
		Value:  t.Value,
		Effect: corev1.TaintEffect(t.Effect),
	}
}

// Repels tells whether the taint keeps pods without a matching toleration off the node.
func (t Taint) Repels() bool {
	return t.Effect == string(corev1.TaintEffectNoSchedule) || t.Effect == string(corev1.TaintEffectNoExecute)
}

type Firewall struct {
	Name     string `yaml:"name,omitempty"`
	Inbound  []Rule `yaml:"inbound,omitempty"  validate:"dive"`
	Outbound []Rule `yaml:"outbound,omitempty" validate:"dive"`
}

type Rule struct {
	Protocol string   `yaml:"protocol"        validate:"required,oneof=tcp udp icmp"`
	Ports    string   `yaml:"ports,omitempty"`
	CIDRs    []string `yaml:"cidrs"           validate:"required,min=1,dive,cidr"`
}

// Backend is the object storage location holding the Terraform state of the environment.
type Backend struct {
	Bucket   string `yaml:"bucket"             validate:"required"`
	Endpoint string `yaml:"endpoint"           validate:"required,url"`
	Region   string `yaml:"region,omitempty"`
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package terraform turns an environment topology into the Terraform configuration applied by the
// pipeline, and reads back what Terraform plans to do with it.
package terraform

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/creatium/gitopsctl/internal/topology"
	iox "github.com/creatium/gitopsctl/internal/x/io"
)

const (
	ProviderSource    = "digitalocean/digitalocean"
	ProviderVersion   = "~> 2.44"
	TerraformVersion  = ">= 1.6.0"
	ClusterResource   = "digitalocean_kubernetes_cluster"
	NodePoolResource  = "digitalocean_kubernetes_node_pool"
	FirewallResource  = "digitalocean_firewall"
	ClusterName       = "this"
	FirewallName      = "nodes"
	MainFile          = "main.tf"
	defaultPortsRange = "all"
)

// Render builds the Terraform configuration of env. Output is deterministic: rendering the same
// environment twice yields the same bytes.
func Render(env topology.Environment) *hclwrite.File {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	renderSettings(root, env)
	root.AppendNewline()

	root.AppendNewBlock("provider", []string{"digitalocean"})
	root.AppendNewline()

	renderCluster(root, env)

	for _, p := range env.NodePools {
		if p.Name == env.DefaultPool().Name {
			continue
		}

		root.AppendNewline()
		renderNodePool(root, p, env.Firewall.Name)
	}

	root.AppendNewline()
	renderFirewall(root, env)

	root.AppendNewline()
	renderOutputs(root)

	return f
}

// Bytes renders env and formats it the way `terraform fmt` would.
func Bytes(env topology.Environment) []byte {
	return hclwrite.Format(Render(env).Bytes())
}

// Write validates env and renders it into dir/main.tf. Nothing is written for an invalid env.
func Write(dir string, env topology.Environment) (string, error) {
	if err := topology.Validate(env); err != nil {
		return "", fmt.Errorf("error while rendering terraform of %s: %w", env.Name, err)
	}

	target := filepath.Join(dir, MainFile)

	if err := iox.WriteFile(target, Bytes(env)); err != nil {
		return "", fmt.Errorf("error while writing terraform configuration: %w", err)
	}

	return target, nil
}

// ResourceName returns the stable identifier of a pool resource.
func ResourceName(pool string) string {
	return strings.ReplaceAll(pool, "-", "_")
}

func renderSettings(root *hclwrite.Body, env topology.Environment) {
	tf := root.AppendNewBlock("terraform", nil).Body()
	tf.SetAttributeValue("required_version", cty.StringVal(TerraformVersion))

	rp := tf.AppendNewBlock("required_providers", nil).Body()
	rp.SetAttributeValue("digitalocean", cty.ObjectVal(map[string]cty.Value{
		"source":  cty.StringVal(ProviderSource),
		"version": cty.StringVal(ProviderVersion),
	}))

	be := tf.AppendNewBlock("backend", []string{"s3"}).Body()
	be.SetAttributeValue("bucket", cty.StringVal(env.Backend.Bucket))
	be.SetAttributeValue("key", cty.StringVal(env.StateKey()))
	be.SetAttributeValue("region", cty.StringVal(env.Backend.Region))
	be.SetAttributeValue("endpoints", cty.ObjectVal(map[string]cty.Value{
		"s3": cty.StringVal(env.Backend.Endpoint),
	}))
	be.SetAttributeValue("skip_credentials_validation", cty.True)
	be.SetAttributeValue("skip_metadata_api_check", cty.True)
	be.SetAttributeValue("skip_region_validation", cty.True)
	be.SetAttributeValue("skip_requesting_account_id", cty.True)
	be.SetAttributeValue("skip_s3_checksum", cty.True)
}

func renderCluster(root *hclwrite.Body, env topology.Environment) {
	c := env.Cluster

	b := root.AppendNewBlock("resource", []string{ClusterResource, ClusterName}).Body()
	b.SetAttributeValue("name", cty.StringVal(c.Name))
	b.SetAttributeValue("region", cty.StringVal(c.Region))
	b.SetAttributeValue("version", cty.StringVal(c.Version))
	b.SetAttributeValue("ha", cty.BoolVal(c.HA))
	b.SetAttributeValue("auto_upgrade", cty.BoolVal(c.AutoUpgrade))
	b.SetAttributeValue("surge_upgrade", cty.BoolVal(c.SurgeUpgrade))

	if c.VPC != "" {
		b.SetAttributeValue("vpc_uuid", cty.StringVal(c.VPC))
	}

	b.SetAttributeValue("tags", stringList(append([]string{env.Name}, env.Tags...)))

	if c.MaintenanceWindow != nil {
		mp := b.AppendNewBlock("maintenance_policy", nil).Body()
		mp.SetAttributeValue("day", cty.StringVal(c.MaintenanceWindow.Day))
		mp.SetAttributeValue("start_time", cty.StringVal(c.MaintenanceWindow.StartTime))
	}

	def := env.DefaultPool()

	np := b.AppendNewBlock("node_pool", nil).Body()
	renderPoolAttributes(np, def, env.Firewall.Name)

	if def.Autoscale.Enabled {
		renderIgnoreNodeCount(b, hcl.Traversal{
			hcl.TraverseRoot{Name: "node_pool"},
			hcl.TraverseIndex{Key: cty.NumberIntVal(0)},
			hcl.TraverseAttr{Name: "node_count"},
		})
	}
}

func renderNodePool(root *hclwrite.Body, p topology.NodePool, nodeTag string) {
	b := root.AppendNewBlock("resource", []string{NodePoolResource, ResourceName(p.Name)}).Body()
	b.SetAttributeTraversal("cluster_id", hcl.Traversal{
		hcl.TraverseRoot{Name: ClusterResource},
		hcl.TraverseAttr{Name: ClusterName},
		hcl.TraverseAttr{Name: "id"},
	})

	renderPoolAttributes(b, p, nodeTag)

	if p.Autoscale.Enabled {
		renderIgnoreNodeCount(b, hcl.Traversal{hcl.TraverseRoot{Name: "node_count"}})
	}
}

// renderPoolAttributes writes the pool body. Scaling attributes come from topology.ScalingFor:
// fixed pools never carry min/max and autoscaled pools start at their minimum.
func renderPoolAttributes(b *hclwrite.Body, p topology.NodePool, nodeTag string) {
	s := topology.ScalingFor(p)

	b.SetAttributeValue("name", cty.StringVal(p.Name))
	b.SetAttributeValue("size", cty.StringVal(p.Size))
	b.SetAttributeValue("node_count", cty.NumberIntVal(int64(s.NodeCount)))

	if s.AutoScale {
		b.SetAttributeValue("auto_scale", cty.True)
		b.SetAttributeValue("min_nodes", cty.NumberIntVal(int64(*s.MinNodes)))
		b.SetAttributeValue("max_nodes", cty.NumberIntVal(int64(*s.MaxNodes)))
	}

	b.SetAttributeValue("labels", stringMap(p.Labels))
	b.SetAttributeValue("tags", stringList(append([]string{nodeTag}, p.Tags...)))

	for _, t := range p.Taints {
		tb := b.AppendNewBlock("taint", nil).Body()
		tb.SetAttributeValue("key", cty.StringVal(t.Key))
		tb.SetAttributeValue("value", cty.StringVal(t.Value))
		tb.SetAttributeValue("effect", cty.StringVal(t.Effect))
	}
}

// renderIgnoreNodeCount hands the node count over to the managed autoscaler once the pool exists,
// so re-applying an unchanged definition does not reset it.
func renderIgnoreNodeCount(b *hclwrite.Body, attr hcl.Traversal) {
	lc := b.AppendNewBlock("lifecycle", nil).Body()
	lc.SetAttributeRaw("ignore_changes", hclwrite.TokensForTuple([]hclwrite.Tokens{
		hclwrite.TokensForTraversal(attr),
	}))
}

func renderFirewall(root *hclwrite.Body, env topology.Environment) {
	fw := env.Firewall

	b := root.AppendNewBlock("resource", []string{FirewallResource, FirewallName}).Body()
	b.SetAttributeValue("name", cty.StringVal(fw.Name))
	b.SetAttributeValue("tags", stringList([]string{fw.Name}))

	for _, r := range fw.Inbound {
		rb := b.AppendNewBlock("inbound_rule", nil).Body()
		renderRule(rb, r, "source_addresses")
	}

	for _, r := range fw.EffectiveOutbound() {
		rb := b.AppendNewBlock("outbound_rule", nil).Body()
		renderRule(rb, r, "destination_addresses")
	}
}

func renderRule(b *hclwrite.Body, r topology.Rule, addressesAttr string) {
	b.SetAttributeValue("protocol", cty.StringVal(r.Protocol))

	if r.Protocol != "icmp" {
		ports := r.Ports
		if ports == "" {
			ports = defaultPortsRange
		}

		b.SetAttributeValue("port_range", cty.StringVal(ports))
	}

	b.SetAttributeValue(addressesAttr, stringList(r.CIDRs))
}

func renderOutputs(root *hclwrite.Body) {
	for _, attr := range []string{"id", "endpoint", "urn"} {
		ob := root.AppendNewBlock("output", []string{"cluster_" + attr}).Body()
		ob.SetAttributeTraversal("value", hcl.Traversal{
			hcl.TraverseRoot{Name: ClusterResource},
			hcl.TraverseAttr{Name: ClusterName},
			hcl.TraverseAttr{Name: attr},
		})
	}
}

func stringList(values []string) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.String)
	}

	vals := make([]cty.Value, len(values))
	for i, v := range values {
		vals[i] = cty.StringVal(v)
	}

	return cty.ListVal(vals)
}

func stringMap(values map[string]string) cty.Value {
	if len(values) == 0 {
		return cty.MapValEmpty(cty.String)
	}

	vals := make(map[string]cty.Value, len(values))
	for k, v := range values {
		vals[k] = cty.StringVal(v)
	}

	return cty.MapVal(vals)
}

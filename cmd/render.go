// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/creatium/gitopsctl/cmd/render"
	"github.com/creatium/gitopsctl/internal/platform"
)

func NewRenderCmd() *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render Terraform, workload manifests and ArgoCD applications into the rendered directory",
	}

	renderCmd.AddCommand(render.NewArtifactCmd(platform.ArtifactTerraform, "Render the Terraform configuration of each environment"))
	renderCmd.AddCommand(render.NewArtifactCmd(platform.ArtifactManifests, "Render the workload manifests of each service"))
	renderCmd.AddCommand(render.NewArtifactCmd(platform.ArtifactArgoCD, "Render the ArgoCD applications and environment roots"))
	renderCmd.AddCommand(render.NewArtifactCmd(platform.ArtifactAll, "Render every artifact"))

	return renderCmd
}

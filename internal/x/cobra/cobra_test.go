// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unit

package cobrax_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	cobrax "github.com/creatium/gitopsctl/internal/x/cobra"
)

func TestGetFullname(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "gitopsctl"}
	render := &cobra.Command{Use: "render"}
	terraform := &cobra.Command{Use: "terraform"}

	root.AddCommand(render)
	render.AddCommand(terraform)

	assert.Equal(t, "gitopsctl", cobrax.GetFullname(root))
	assert.Equal(t, "render", cobrax.GetFullname(render))
	assert.Equal(t, "render terraform", cobrax.GetFullname(terraform))
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdutil

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/client-go/kubernetes"

	"github.com/creatium/gitopsctl/internal/platform"
	"github.com/creatium/gitopsctl/internal/values"
	kubex "github.com/creatium/gitopsctl/internal/x/kube"
	netx "github.com/creatium/gitopsctl/internal/x/net"
)

var (
	ErrParsingFlag        = errors.New("error while parsing flag")
	ErrKubeconfigReq      = errors.New("either the KUBECONFIG environment variable or the --kubeconfig flag should be set")
	ErrKubeconfigNotFound = errors.New("kubeconfig file not found")
)

// LoadPlatform reads the platform file selected by the --platform flag.
func LoadPlatform() (*platform.Platform, error) {
	p, err := platform.Load(viper.GetString("platform"))
	if err != nil {
		return nil, fmt.Errorf("error while loading platform: %w", err)
	}

	return p, nil
}

// NewRenderer builds a renderer honoring the --set overrides of cmd, if any.
func NewRenderer(cmd *cobra.Command, p *platform.Platform) (*platform.Renderer, error) {
	r := platform.NewRenderer(p, netx.NewGoGetterClient())

	if cmd.Flags().Lookup("set") == nil {
		return r, nil
	}

	exprs, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParsingFlag, "set")
	}

	overrides, err := values.ParseSet(exprs)
	if err != nil {
		return nil, err
	}

	return r.WithOverrides(overrides), nil
}

// Environments resolves the --env flag: a single environment, or all of them when empty.
func Environments(p *platform.Platform, name string) ([]platform.Environment, error) {
	if name == "" {
		return p.Environments, nil
	}

	env, err := p.Environment(name)
	if err != nil {
		return nil, err
	}

	return []platform.Environment{env}, nil
}

// Kubeconfig returns the kubeconfig path from the flag value or the KUBECONFIG variable.
func Kubeconfig(flag string) (string, error) {
	path := flag
	if path == "" {
		path = os.Getenv("KUBECONFIG")
	}

	if path == "" {
		return "", ErrKubeconfigReq
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrKubeconfigNotFound, path)
	}

	return path, nil
}

// Clientset connects to the cluster selected by the --kubeconfig flag or KUBECONFIG.
func Clientset(kubeconfigFlag string) (kubernetes.Interface, error) {
	kubeconfig, err := Kubeconfig(kubeconfigFlag)
	if err != nil {
		return nil, err
	}

	return kubex.NewClientset(kubeconfig)
}

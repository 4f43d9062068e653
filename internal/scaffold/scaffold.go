// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-containerregistry/pkg/name"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/creatium/gitopsctl/internal/template"
	"github.com/creatium/gitopsctl/internal/topology"
)

const ServiceTemplatesRoot = "files/service"

var (
	//go:embed files
	files embed.FS

	ErrInvalidService = errors.New("invalid service scaffold")
)

type Service struct {
	Name     string `validate:"required"`
	Team     string `validate:"required"`
	Tier     string
	NodePool string `validate:"omitempty,oneof=general compute system"`
	Image    string
	Tag      string
	Port     int `validate:"gte=1,lte=65535"`
	Expose   bool
}

func (s Service) withDefaults() Service {
	if s.NodePool == "" {
		s.NodePool = string(topology.PoolClassGeneral)
	}

	if s.Image == "" {
		s.Image = "registry.digitalocean.com/creatium/" + s.Name
	}

	if s.Tag == "" {
		s.Tag = "latest"
	}

	if s.Port == 0 {
		s.Port = 8080
	}

	return s
}

func (s Service) validate() error {
	if err := validator.New().Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidService, err)
	}

	if errs := validation.IsDNS1123Label(s.Name); len(errs) > 0 {
		return fmt.Errorf("%w: name %q: %s", ErrInvalidService, s.Name, strings.Join(errs, ", "))
	}

	if _, err := name.NewTag(s.Image+":"+s.Tag, name.WeakValidation); err != nil {
		return fmt.Errorf("%w: image: %v", ErrInvalidService, err)
	}

	return nil
}

// NewService writes the skeleton of a new service under <root>/services/<name>.
func NewService(root string, svc Service) ([]string, error) {
	svc = svc.withDefaults()

	if err := svc.validate(); err != nil {
		return nil, err
	}

	target := filepath.Join(root, "services", svc.Name)

	model, err := template.NewModel(files, ServiceTemplatesRoot, target, map[string]any{
		"service": map[string]any{
			"name":     svc.Name,
			"team":     svc.Team,
			"tier":     svc.Tier,
			"nodePool": svc.NodePool,
			"image":    svc.Image,
			"tag":      svc.Tag,
			"port":     svc.Port,
			"expose":   svc.Expose,
		},
	}, template.Templates{ProcessFilename: true})
	if err != nil {
		return nil, err
	}

	model.BaseDir = root

	return model.Generate()
}

// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/creatium/gitopsctl/internal/schema/santhosh"
	"github.com/creatium/gitopsctl/internal/values"
	netx "github.com/creatium/gitopsctl/internal/x/net"
)

var (
	ErrInvalidValues        = errors.New("values do not match the chart schema")
	ErrAutoscalingBounds    = errors.New("autoscaling requires 1 <= minReplicas <= maxReplicas")
	ErrInvalidImage         = errors.New("invalid image reference")
	ErrIngressHost          = errors.New("invalid ingress host")
	ErrIngressWithoutSvc    = errors.New("ingress requires the service to be enabled")
	ErrMonitorWithoutMetric = errors.New("serviceMonitor requires metrics and the service to be enabled")
	ErrInvalidQuantity      = errors.New("invalid resource quantity")
	ErrInvalidBudget        = errors.New("invalid disruption budget")
	ErrInvalidLabel         = errors.New("invalid label")
)

const digestPrefix = "sha256:"

// Validate checks merged values against the chart schema and the rules the schema cannot
// express. Every violation is reported.
func (c *Chart) Validate(vals values.Values) error {
	doc, err := santhosh.ToJSONValue(map[string]any(vals))
	if err != nil {
		return err
	}

	if err := c.Schema.Validate(doc); err != nil {
		violations := santhosh.Violations(err)
		if len(violations) == 0 {
			return fmt.Errorf("%w: %w", ErrInvalidValues, err)
		}

		return fmt.Errorf("%w:\n%s", ErrInvalidValues, strings.Join(violations, "\n"))
	}

	cfg, err := values.Decode[Config](vals)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValues, err)
	}

	return c.validateConfig(cfg)
}

func (c *Chart) validateConfig(cfg Config) error {
	var errs []error

	if cfg.Autoscaling.Enabled &&
		(cfg.Autoscaling.MinReplicas < 1 || cfg.Autoscaling.MinReplicas > cfg.Autoscaling.MaxReplicas) {
		errs = append(errs, fmt.Errorf("%w: got min %d, max %d",
			ErrAutoscalingBounds, cfg.Autoscaling.MinReplicas, cfg.Autoscaling.MaxReplicas))
	}

	if _, err := name.ParseReference(c.imageRef(cfg)); err != nil {
		errs = append(errs, fmt.Errorf("%w %q: %w", ErrInvalidImage, c.imageRef(cfg), err))
	}

	if cfg.Ingress.Enabled {
		if err := netx.ValidateHostname(cfg.Ingress.Host); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrIngressHost, err))
		}

		if !cfg.Service.Enabled {
			errs = append(errs, ErrIngressWithoutSvc)
		}
	}

	if cfg.Metrics.ServiceMonitor.Enabled && (!cfg.Metrics.Enabled || !cfg.Service.Enabled) {
		errs = append(errs, ErrMonitorWithoutMetric)
	}

	errs = append(errs, c.validateLabels(cfg)...)

	for _, list := range []map[string]string{cfg.Resources.Requests, cfg.Resources.Limits} {
		for k, v := range list {
			if _, err := resource.ParseQuantity(v); err != nil {
				errs = append(errs, fmt.Errorf("%w %s=%q: %w", ErrInvalidQuantity, k, v, err))
			}
		}
	}

	if cfg.PodDisruptionBudget.Enabled {
		if _, err := disruptionBudget(cfg.PodDisruptionBudget); err != nil {
			errs = append(errs, err)
		}

		replicas := cfg.ReplicaCount
		if cfg.Autoscaling.Enabled {
			replicas = cfg.Autoscaling.MinReplicas
		}

		if v, ok := intOrString(cfg.PodDisruptionBudget.MinAvailable); ok &&
			cfg.PodDisruptionBudget.MaxUnavailable == nil &&
			v.Type == intstr.Int && v.IntVal >= replicas {
			logrus.Warnf("disruption budget minAvailable %d with %d replicas blocks voluntary evictions",
				v.IntVal, replicas)
		}
	}

	return errors.Join(errs...)
}

// validateLabels checks the label values derived from values, and the extra pod labels, against
// the syntax the API server enforces.
func (c *Chart) validateLabels(cfg Config) []error {
	var errs []error

	for _, l := range []struct{ key, value string }{
		{LabelVersion, c.appVersion(cfg)},
		{LabelTeam, Truncate(cfg.Team)},
		{LabelTier, Truncate(cfg.Tier)},
		{LabelCostCtr, Truncate(cfg.CostCenter)},
	} {
		if msgs := validation.IsValidLabelValue(l.value); len(msgs) > 0 {
			errs = append(errs, fmt.Errorf("%w %s=%q: %s", ErrInvalidLabel, l.key, l.value, strings.Join(msgs, ", ")))
		}
	}

	keys := make([]string, 0, len(cfg.PodLabels))
	for k := range cfg.PodLabels {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		msgs := append(validation.IsQualifiedName(k), validation.IsValidLabelValue(cfg.PodLabels[k])...)
		if len(msgs) > 0 {
			errs = append(errs, fmt.Errorf("%w %s=%q: %s", ErrInvalidLabel, k, cfg.PodLabels[k], strings.Join(msgs, ", ")))
		}
	}

	return errs
}

func (c *Chart) imageRef(cfg Config) string {
	tag := cfg.Image.Tag
	if tag == "" && c.Metadata != nil {
		tag = c.Metadata.AppVersion
	}

	if tag == "" {
		return cfg.Image.Repository
	}

	if strings.HasPrefix(tag, digestPrefix) {
		return cfg.Image.Repository + "@" + tag
	}

	return cfg.Image.Repository + ":" + tag
}

type budget struct {
	minAvailable   *intstr.IntOrString
	maxUnavailable *intstr.IntOrString
}

func disruptionBudget(pdb PodDisruptionBudget) (budget, error) {
	if pdb.MaxUnavailable != nil {
		v, ok := intOrString(pdb.MaxUnavailable)
		if !ok {
			return budget{}, fmt.Errorf("%w: maxUnavailable %v", ErrInvalidBudget, pdb.MaxUnavailable)
		}

		return budget{maxUnavailable: &v}, nil
	}

	if pdb.MinAvailable == nil {
		return budget{}, fmt.Errorf("%w: one of minAvailable or maxUnavailable is required", ErrInvalidBudget)
	}

	v, ok := intOrString(pdb.MinAvailable)
	if !ok {
		return budget{}, fmt.Errorf("%w: minAvailable %v", ErrInvalidBudget, pdb.MinAvailable)
	}

	return budget{minAvailable: &v}, nil
}

func intOrString(v any) (intstr.IntOrString, bool) {
	switch t := v.(type) {
	case int:
		return intstr.FromInt32(int32(t)), t >= 0 && int64(t) <= math.MaxInt32

	case int64:
		return intstr.FromInt32(int32(t)), t >= 0 && t <= math.MaxInt32

	case float64:
		if t < 0 || t > math.MaxInt32 || t != math.Trunc(t) {
			return intstr.IntOrString{}, false
		}

		return intstr.FromInt32(int32(t)), true

	case string:
		if !strings.HasSuffix(t, "%") {
			return intstr.IntOrString{}, false
		}

		return intstr.FromString(t), true

	default:
		return intstr.IntOrString{}, false
	}
}

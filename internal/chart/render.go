// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package chart

import (
	"fmt"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	policyv1 "k8s.io/api/policy/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/intstr"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/creatium/gitopsctl/internal/topology"
	"github.com/creatium/gitopsctl/internal/values"
)

const (
	ManagedBy = "gitopsctl"

	LabelName      = "app.kubernetes.io/name"
	LabelInstance  = "app.kubernetes.io/instance"
	LabelVersion   = "app.kubernetes.io/version"
	LabelManagedBy = "app.kubernetes.io/managed-by"
	LabelChart     = "helm.sh/chart"
	LabelTeam      = "team"
	LabelTier      = "tier"
	LabelCostCtr   = "cost-center"

	httpPortName    = "http"
	metricsPortName = "metrics"
)

type Options struct {
	Release   string
	Namespace string
	// Name is the chart name the workload is known by. It defaults to the chart's own name.
	Name string
}

type workload struct {
	cfg       Config
	opts      Options
	chartName string
	name      string
	fullName  string
	version   string
	chart     string
}

// Render builds the objects of a release from fully merged values, chart defaults included.
// Optional objects exist only when their flag is on.
func (c *Chart) Render(opts Options, vals values.Values) (*Manifest, error) {
	if err := ValidateReleaseName(opts.Release); err != nil {
		return nil, err
	}

	if err := c.Validate(vals); err != nil {
		return nil, err
	}

	cfg, err := values.Decode[Config](vals)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValues, err)
	}

	extraTolerations, err := decodeAPI[[]corev1.Toleration](vals.Lookup("extraTolerations"))
	if err != nil {
		return nil, fmt.Errorf("%w: extraTolerations: %w", ErrInvalidValues, err)
	}

	chartName := opts.Name
	if chartName == "" {
		chartName = c.Metadata.Name
	}

	w := workload{
		cfg:       cfg,
		opts:      opts,
		chartName: chartName,
		name:      Name(chartName, cfg.NameOverride),
		fullName:  FullName(opts.Release, chartName, cfg.NameOverride, cfg.FullnameOverride),
		version:   c.appVersion(cfg),
		chart:     ChartLabel(chartName, c.Metadata.Version),
	}

	m := &Manifest{}

	if cfg.ServiceAccount.Create {
		m.Add(w.serviceAccount())
	}

	if cfg.Service.Enabled {
		m.Add(w.service())
	}

	m.Add(w.deployment(c.imageRef(cfg), extraTolerations))

	if cfg.Autoscaling.Enabled {
		m.Add(w.horizontalPodAutoscaler())
	}

	if cfg.PodDisruptionBudget.Enabled {
		b, err := disruptionBudget(cfg.PodDisruptionBudget)
		if err != nil {
			return nil, err
		}

		m.Add(w.podDisruptionBudget(b))
	}

	if cfg.Ingress.Enabled {
		m.Add(w.ingress())
	}

	if cfg.Metrics.ServiceMonitor.Enabled {
		m.Add(w.serviceMonitor())
	}

	return m, nil
}

// appVersion is the value of the version label. Digests cannot be label values, so an image
// pinned by digest carries no version label.
func (c *Chart) appVersion(cfg Config) string {
	if strings.HasPrefix(cfg.Image.Tag, digestPrefix) {
		return ""
	}

	if cfg.Image.Tag != "" {
		return Truncate(cfg.Image.Tag)
	}

	if c.Metadata == nil {
		return ""
	}

	return c.Metadata.AppVersion
}

func decodeAPI[T any](v any, ok bool) (T, error) {
	var out T

	if !ok || v == nil {
		return out, nil
	}

	data, err := sigsyaml.Marshal(v)
	if err != nil {
		return out, err
	}

	if err := sigsyaml.UnmarshalStrict(data, &out); err != nil {
		return out, err
	}

	return out, nil
}

func (w workload) selectorLabels() map[string]string {
	return map[string]string{
		LabelName:     w.name,
		LabelInstance: w.opts.Release,
	}
}

func (w workload) labels() map[string]string {
	l := w.selectorLabels()

	l[LabelChart] = w.chart
	l[LabelManagedBy] = ManagedBy

	if w.version != "" {
		l[LabelVersion] = w.version
	}

	for k, v := range map[string]string{LabelTeam: w.cfg.Team, LabelTier: w.cfg.Tier, LabelCostCtr: w.cfg.CostCenter} {
		if v != "" {
			l[k] = Truncate(v)
		}
	}

	return l
}

func (w workload) meta(name string) metav1.ObjectMeta {
	return metav1.ObjectMeta{
		Name:      name,
		Namespace: w.opts.Namespace,
		Labels:    w.labels(),
	}
}

func (w workload) serviceAccountName() string {
	if w.cfg.ServiceAccount.Name != "" {
		return w.cfg.ServiceAccount.Name
	}

	if w.cfg.ServiceAccount.Create {
		return w.fullName
	}

	return "default"
}

func (w workload) serviceAccount() *corev1.ServiceAccount {
	m := w.meta(w.serviceAccountName())
	m.Annotations = w.cfg.ServiceAccount.Annotations

	return &corev1.ServiceAccount{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
		ObjectMeta: m,
	}
}

func (w workload) service() *corev1.Service {
	ports := []corev1.ServicePort{
		{
			Name:       httpPortName,
			Port:       w.cfg.Service.Port,
			TargetPort: intstr.FromString(httpPortName),
			Protocol:   corev1.ProtocolTCP,
		},
	}

	if w.cfg.Metrics.Enabled {
		ports = append(ports, corev1.ServicePort{
			Name:       metricsPortName,
			Port:       w.cfg.Metrics.Port,
			TargetPort: intstr.FromString(metricsPortName),
			Protocol:   corev1.ProtocolTCP,
		})
	}

	return &corev1.Service{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: w.meta(w.fullName),
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceType(w.cfg.Service.Type),
			Selector: w.selectorLabels(),
			Ports:    ports,
		},
	}
}

func (w workload) deployment(image string, extraTolerations []corev1.Toleration) *appsv1.Deployment {
	placement := topology.PlacementFor(topology.PoolClass(w.cfg.NodePool))

	podLabels := w.labels()
	for k, v := range w.cfg.PodLabels {
		podLabels[k] = v
	}

	ports := []corev1.ContainerPort{
		{Name: httpPortName, ContainerPort: w.cfg.ContainerPort, Protocol: corev1.ProtocolTCP},
	}

	if w.cfg.Metrics.Enabled {
		ports = append(ports, corev1.ContainerPort{
			Name: metricsPortName, ContainerPort: w.cfg.Metrics.Port, Protocol: corev1.ProtocolTCP,
		})
	}

	env := make([]corev1.EnvVar, 0, len(w.cfg.Env))
	for _, e := range w.cfg.Env {
		env = append(env, corev1.EnvVar{Name: e.Name, Value: e.Value})
	}

	pullSecrets := make([]corev1.LocalObjectReference, 0, len(w.cfg.ImagePullSecrets))
	for _, s := range w.cfg.ImagePullSecrets {
		pullSecrets = append(pullSecrets, corev1.LocalObjectReference{Name: s})
	}

	d := &appsv1.Deployment{
		TypeMeta:   metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: w.meta(w.fullName),
		Spec: appsv1.DeploymentSpec{
			Selector: &metav1.LabelSelector{MatchLabels: w.selectorLabels()},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels:      podLabels,
					Annotations: w.cfg.PodAnnotations,
				},
				Spec: corev1.PodSpec{
					ServiceAccountName: w.serviceAccountName(),
					ImagePullSecrets:   pullSecrets,
					NodeSelector:       placement.NodeSelector,
					Tolerations:        append(placement.Tolerations, extraTolerations...),
					Containers: []corev1.Container{
						{
							Name:            w.name,
							Image:           image,
							ImagePullPolicy: corev1.PullPolicy(w.cfg.Image.PullPolicy),
							Ports:           ports,
							Env:             env,
							Resources: corev1.ResourceRequirements{
								Requests: resourceList(w.cfg.Resources.Requests),
								Limits:   resourceList(w.cfg.Resources.Limits),
							},
							LivenessProbe:  probe(w.cfg.LivenessProbe),
							ReadinessProbe: probe(w.cfg.ReadinessProbe),
						},
					},
				},
			},
		},
	}

	// The autoscaler owns the replica count.
	if !w.cfg.Autoscaling.Enabled {
		replicas := w.cfg.ReplicaCount
		d.Spec.Replicas = &replicas
	}

	return d
}

func resourceList(in map[string]string) corev1.ResourceList {
	if len(in) == 0 {
		return nil
	}

	out := make(corev1.ResourceList, len(in))
	for k, v := range in {
		out[corev1.ResourceName(k)] = resource.MustParse(v)
	}

	return out
}

func probe(p Probe) *corev1.Probe {
	if p.Path == "" {
		return nil
	}

	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{Path: p.Path, Port: intstr.FromString(httpPortName)},
		},
		InitialDelaySeconds: p.InitialDelaySeconds,
		PeriodSeconds:       p.PeriodSeconds,
		TimeoutSeconds:      p.TimeoutSeconds,
		FailureThreshold:    p.FailureThreshold,
	}
}

func (w workload) horizontalPodAutoscaler() *autoscalingv2.HorizontalPodAutoscaler {
	minReplicas := w.cfg.Autoscaling.MinReplicas

	var metrics []autoscalingv2.MetricSpec

	targets := []struct {
		resource corev1.ResourceName
		target   int32
	}{
		{corev1.ResourceCPU, w.cfg.Autoscaling.TargetCPUUtilizationPercentage},
		{corev1.ResourceMemory, w.cfg.Autoscaling.TargetMemoryUtilizationPercentage},
	}

	for _, t := range targets {
		if t.target <= 0 {
			continue
		}

		utilization := t.target
		metrics = append(metrics, autoscalingv2.MetricSpec{
			Type: autoscalingv2.ResourceMetricSourceType,
			Resource: &autoscalingv2.ResourceMetricSource{
				Name: t.resource,
				Target: autoscalingv2.MetricTarget{
					Type:               autoscalingv2.UtilizationMetricType,
					AverageUtilization: &utilization,
				},
			},
		})
	}

	return &autoscalingv2.HorizontalPodAutoscaler{
		TypeMeta:   metav1.TypeMeta{APIVersion: "autoscaling/v2", Kind: "HorizontalPodAutoscaler"},
		ObjectMeta: w.meta(w.fullName),
		Spec: autoscalingv2.HorizontalPodAutoscalerSpec{
			ScaleTargetRef: autoscalingv2.CrossVersionObjectReference{
				APIVersion: "apps/v1",
				Kind:       "Deployment",
				Name:       w.fullName,
			},
			MinReplicas: &minReplicas,
			MaxReplicas: w.cfg.Autoscaling.MaxReplicas,
			Metrics:     metrics,
		},
	}
}

func (w workload) podDisruptionBudget(b budget) *policyv1.PodDisruptionBudget {
	return &policyv1.PodDisruptionBudget{
		TypeMeta:   metav1.TypeMeta{APIVersion: "policy/v1", Kind: "PodDisruptionBudget"},
		ObjectMeta: w.meta(w.fullName),
		Spec: policyv1.PodDisruptionBudgetSpec{
			MinAvailable:   b.minAvailable,
			MaxUnavailable: b.maxUnavailable,
			Selector:       &metav1.LabelSelector{MatchLabels: w.selectorLabels()},
		},
	}
}

func (w workload) ingress() *networkingv1.Ingress {
	path := w.cfg.Ingress.Path
	if path == "" {
		path = "/"
	}

	pathType := networkingv1.PathTypePrefix

	m := w.meta(w.fullName)
	m.Annotations = w.cfg.Ingress.Annotations

	ing := &networkingv1.Ingress{
		TypeMeta:   metav1.TypeMeta{APIVersion: "networking.k8s.io/v1", Kind: "Ingress"},
		ObjectMeta: m,
		Spec: networkingv1.IngressSpec{
			Rules: []networkingv1.IngressRule{
				{
					Host: w.cfg.Ingress.Host,
					IngressRuleValue: networkingv1.IngressRuleValue{
						HTTP: &networkingv1.HTTPIngressRuleValue{
							Paths: []networkingv1.HTTPIngressPath{
								{
									Path:     path,
									PathType: &pathType,
									Backend: networkingv1.IngressBackend{
										Service: &networkingv1.IngressServiceBackend{
											Name: w.fullName,
											Port: networkingv1.ServiceBackendPort{Name: httpPortName},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}

	if w.cfg.Ingress.ClassName != "" {
		className := w.cfg.Ingress.ClassName
		ing.Spec.IngressClassName = &className
	}

	if w.cfg.Ingress.TLS.Enabled {
		secret := w.cfg.Ingress.TLS.SecretName
		if secret == "" {
			secret = Truncate(w.fullName[:min(len(w.fullName), MaxNameLength-len("-tls"))] + "-tls")
		}

		ing.Spec.TLS = []networkingv1.IngressTLS{{Hosts: []string{w.cfg.Ingress.Host}, SecretName: secret}}
	}

	return ing
}

func (w workload) serviceMonitor() *unstructured.Unstructured {
	endpoint := map[string]any{
		"port": metricsPortName,
		"path": w.cfg.Metrics.Path,
	}

	if w.cfg.Metrics.ServiceMonitor.Interval != "" {
		endpoint["interval"] = w.cfg.Metrics.ServiceMonitor.Interval
	}

	selector := map[string]any{}
	for k, v := range w.selectorLabels() {
		selector[k] = v
	}

	u := &unstructured.Unstructured{Object: map[string]any{
		"spec": map[string]any{
			"selector":  map[string]any{"matchLabels": selector},
			"endpoints": []any{endpoint},
		},
	}}

	u.SetAPIVersion("monitoring.coreos.com/v1")
	u.SetKind("ServiceMonitor")
	u.SetName(w.fullName)
	u.SetNamespace(w.opts.Namespace)
	u.SetLabels(w.labels())

	return u
}

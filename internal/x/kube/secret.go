// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package kubex

import (
	"context"
	"errors"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

var (
	ErrSecretNotFound = errors.New("secret not found")
	ErrSecretKey      = errors.New("secret key not found")
)

func NewSecret(name, namespace string, labels map[string]string, data map[string][]byte) *corev1.Secret {
	return &corev1.Secret{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Secret"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
			Labels:    labels,
		},
		Type: corev1.SecretTypeOpaque,
		Data: data,
	}
}

// ApplySecret creates the secret or replaces the data of the existing one.
func ApplySecret(ctx context.Context, cs kubernetes.Interface, secret *corev1.Secret) error {
	secrets := cs.CoreV1().Secrets(secret.Namespace)

	current, err := secrets.Get(ctx, secret.Name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		if _, err := secrets.Create(ctx, secret, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("error while creating secret %s/%s: %w", secret.Namespace, secret.Name, err)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("error while getting secret %s/%s: %w", secret.Namespace, secret.Name, err)
	}

	current.Data = secret.Data
	current.Labels = secret.Labels

	if _, err := secrets.Update(ctx, current, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("error while updating secret %s/%s: %w", secret.Namespace, secret.Name, err)
	}

	return nil
}

// SecretData returns one key of a secret.
func SecretData(ctx context.Context, cs kubernetes.Interface, namespace, name, key string) ([]byte, error) {
	secret, err := cs.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s/%s", ErrSecretNotFound, namespace, name)
	}

	if err != nil {
		return nil, fmt.Errorf("error while getting secret %s/%s: %w", namespace, name, err)
	}

	data, ok := secret.Data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s/%s", ErrSecretKey, key, namespace, name)
	}

	return data, nil
}

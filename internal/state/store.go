// Copyright (c) 2024-present Creatium All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package state

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"

	"github.com/creatium/gitopsctl/internal/topology"
	kubex "github.com/creatium/gitopsctl/internal/x/kube"
	yamlx "github.com/creatium/gitopsctl/internal/x/yaml"
)

const (
	Namespace    = "kube-system"
	SecretPrefix = "gitopsctl-topology-"

	TopologyKey  = "topology"
	RevisionKey  = "revision"
	IDKey        = "id"
	AppliedAtKey = "appliedAt"

	ManagedByLabel = "app.kubernetes.io/managed-by"
)

type Storer interface {
	StoreTopology(ctx context.Context, env topology.Environment, revision string) (Record, error)
	GetTopology(ctx context.Context, env string) (topology.Environment, error)
	GetRecord(ctx context.Context, env string) (Record, error)
}

// Record is what the cluster remembers about the last applied topology.
type Record struct {
	ID        string
	Revision  string
	AppliedAt time.Time
	Topology  []byte
}

type Store struct {
	client kubernetes.Interface
	now    func() time.Time
}

func NewStore(client kubernetes.Interface) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

func SecretName(env string) string {
	return SecretPrefix + env
}

func (s *Store) StoreTopology(ctx context.Context, env topology.Environment, revision string) (Record, error) {
	data, err := yamlx.MarshalV3(env)
	if err != nil {
		return Record{}, fmt.Errorf("error while encoding environment %s: %w", env.Name, err)
	}

	rec := Record{
		ID:        uuid.NewString(),
		Revision:  revision,
		AppliedAt: s.now().UTC(),
		Topology:  data,
	}

	secret := kubex.NewSecret(SecretName(env.Name), Namespace, map[string]string{ManagedByLabel: "gitopsctl"}, map[string][]byte{
		TopologyKey:  rec.Topology,
		RevisionKey:  []byte(rec.Revision),
		IDKey:        []byte(rec.ID),
		AppliedAtKey: []byte(rec.AppliedAt.Format(time.RFC3339)),
	})

	logrus.Infof("Saving topology of %s in the cluster...", env.Name)

	if err := kubex.ApplySecret(ctx, s.client, secret); err != nil {
		return Record{}, fmt.Errorf("error while saving topology of %s: %w", env.Name, err)
	}

	return rec, nil
}

func (s *Store) GetRecord(ctx context.Context, env string) (Record, error) {
	read := func(key string) ([]byte, error) {
		return kubex.SecretData(ctx, s.client, Namespace, SecretName(env), key)
	}

	data, err := read(TopologyKey)
	if err != nil {
		return Record{}, fmt.Errorf("error while getting recorded topology of %s: %w", env, err)
	}

	rec := Record{Topology: data}

	if id, err := read(IDKey); err == nil {
		rec.ID = string(id)
	}

	if rev, err := read(RevisionKey); err == nil {
		rec.Revision = string(rev)
	}

	if at, err := read(AppliedAtKey); err == nil {
		if t, err := time.Parse(time.RFC3339, string(at)); err == nil {
			rec.AppliedAt = t
		}
	}

	return rec, nil
}

func (s *Store) GetTopology(ctx context.Context, env string) (topology.Environment, error) {
	rec, err := s.GetRecord(ctx, env)
	if err != nil {
		return topology.Environment{}, err
	}

	var out topology.Environment
	if err := yamlx.UnmarshalV3(rec.Topology, &out); err != nil {
		return topology.Environment{}, fmt.Errorf("error while decoding recorded topology of %s: %w", env, err)
	}

	return out, nil
}

package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/scenery/pkg/codec"
	"github.com/aretw0/scenery/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// GraphStore implements ports.GraphStore with one key per graph name.
// Compiled graphs never expire.
type GraphStore struct {
	client *backend.Client
	prefix string
}

// NewGraphStore creates a graph store sharing client. An empty prefix
// selects DefaultPrefix.
func NewGraphStore(client *backend.Client, prefix string) *GraphStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &GraphStore{client: client, prefix: prefix}
}

func (s *GraphStore) key(name string) string {
	return s.prefix + "graph:" + name
}

func (s *GraphStore) Save(ctx context.Context, name string, g *domain.Graph) error {
	data, err := codec.Encode(g)
	if err != nil {
		return fmt.Errorf("failed to encode graph %s: %w", name, err)
	}
	if err := s.client.Set(ctx, s.key(name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save graph to redis: %w", err)
	}
	return nil
}

func (s *GraphStore) Load(ctx context.Context, name string) (*domain.Graph, error) {
	data, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, name)
		}
		return nil, fmt.Errorf("failed to get graph from redis: %w", err)
	}
	return codec.Decode(data)
}

package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/scenery/pkg/codec"
	"github.com/aretw0/scenery/pkg/domain"
)

// GraphStore implements ports.GraphStore in memory. Graphs are kept encoded
// so every Load returns an independent instance.
type GraphStore struct {
	mu     sync.RWMutex
	graphs map[string][]byte
}

// NewGraphStore creates an empty graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{graphs: make(map[string][]byte)}
}

func (s *GraphStore) Save(ctx context.Context, name string, g *domain.Graph) error {
	data, err := codec.Encode(g)
	if err != nil {
		return fmt.Errorf("failed to encode graph %s: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[name] = data
	return nil
}

func (s *GraphStore) Load(ctx context.Context, name string) (*domain.Graph, error) {
	s.mu.RLock()
	data, ok := s.graphs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, name)
	}
	return codec.Decode(data)
}

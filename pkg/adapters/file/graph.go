package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/scenery/pkg/codec"
	"github.com/aretw0/scenery/pkg/domain"
)

// DefaultGraphName is the compiled graph file of a project, bin/obj.bin.
const DefaultGraphName = "obj"

// GraphStore keeps compiled graphs as <name>.bin files in a directory.
type GraphStore struct {
	BasePath string
}

// NewGraphStore creates a graph store rooted at the bin directory of project.
func NewGraphStore(project string) *GraphStore {
	return &GraphStore{BasePath: filepath.Join(project, "bin")}
}

// Path returns the file a graph name is stored in.
func (s *GraphStore) Path(name string) string {
	return filepath.Join(s.BasePath, name+".bin")
}

func (s *GraphStore) Save(ctx context.Context, name string, g *domain.Graph) error {
	if err := checkID(name); err != nil {
		return err
	}
	data, err := codec.Encode(g)
	if err != nil {
		return fmt.Errorf("failed to encode graph %s: %w", name, err)
	}
	return writeAtomic(s.BasePath, name+".bin", data)
}

func (s *GraphStore) Load(ctx context.Context, name string) (*domain.Graph, error) {
	if err := checkID(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, s.Path(name))
		}
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	return codec.Decode(data)
}

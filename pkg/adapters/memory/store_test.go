package memory_test

import (
	"testing"

	"github.com/aretw0/scenery/pkg/adapters/memory"
	"github.com/aretw0/scenery/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	tests.RunStateStoreContract(t, store)
}

func TestMemoryGraphStore_Contract(t *testing.T) {
	tests.RunGraphStoreContract(t, memory.NewGraphStore())
}

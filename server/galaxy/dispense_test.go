package galaxy

import (
	"testing"

	"github.com/df-mc/dragonfly/server/world"
)

func TestDefaultStateCachesMisses(t *testing.T) {
	t.Parallel()

	const missing = "galaxy:not_a_block"
	if b, ok := defaultState(missing); ok || b != nil {
		t.Fatalf("defaultState(%q) = %v, %v, want nil, false", missing, b, ok)
	}
	v, ok := defaultStates.Load(missing)
	if !ok || v != nil {
		t.Fatalf("defaultStates[%q] = %v, %v, want a cached miss", missing, v, ok)
	}
	if _, ok := defaultState(missing); ok {
		t.Fatalf("defaultState(%q) from cache = true, want false", missing)
	}

	b, ok := defaultState("minecraft:stone")
	if !ok {
		t.Fatalf("defaultState(minecraft:stone) = false, want true")
	}
	if cached, _ := defaultStates.Load("minecraft:stone"); cached.(world.Block) != b {
		t.Fatalf("defaultStates[minecraft:stone] = %v, want %v", cached, b)
	}
}

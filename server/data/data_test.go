package data

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRegisterDefaults(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if err := RegisterDefaults(r); err != nil {
		t.Fatalf("RegisterDefaults() error = %v", err)
	}
	if r.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", r.Len())
	}
	if err := RegisterDefaults(r); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("second RegisterDefaults() error = %v, want ErrDuplicateKey", err)
	}
	d, ok := r.Lookup("galaxy:overheat")
	if !ok || d.ID() != Overheat.ID() {
		t.Fatalf("Lookup(galaxy:overheat) = %v, %v", d, ok)
	}
}

func TestRegisterInvalid(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, name := range []string{"", "uuid", ":uuid", "galaxy:"} {
		if err := r.Register(NewKey[int](name)); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("Register(%q) error = %v, want ErrInvalidKey", name, err)
		}
	}
}

func TestBag(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var empty Bag
	b := With(empty, UUID, id)
	b = With(b, Upgrade, 3)

	if empty.Len() != 0 {
		t.Fatalf("With modified the original bag")
	}
	if got, ok := Get(b, UUID); !ok || got != id {
		t.Fatalf("Get(UUID) = %v, %v, want %v", got, ok, id)
	}
	if got, ok := Get(b, Upgrade); !ok || got != 3 {
		t.Fatalf("Get(Upgrade) = %v, %v, want 3", got, ok)
	}
	if _, ok := Get(b, Enable); ok {
		t.Fatalf("Get(Enable) found a value that was never set")
	}

	// A value stored under the same name with another type is not returned.
	wrong := With(Bag{}, NewKey[string](UUID.Name()), "not-a-uuid")
	if _, ok := Get(wrong, UUID); ok {
		t.Fatalf("Get returned a value of the wrong type")
	}

	b = Without(b, Upgrade)
	if _, ok := Get(b, Upgrade); ok {
		t.Fatalf("Without did not remove the value")
	}
	if b.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", b.Len())
	}
}

package galaxy

import (
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/world"

	"github.com/oktw/galaxy/server/data"
	"github.com/oktw/galaxy/server/dispenser"
)

// stackValues exposes the values of an item stack as data components.
type stackValues struct {
	item.Stack
}

func (s stackValues) Value(name string) (any, bool) {
	return s.Stack.Value(name)
}

// withBag returns s carrying every value of b.
func withBag(s item.Stack, b data.Bag) item.Stack {
	b.Each(func(name string, v any) {
		s = s.WithValue(name, v)
	})
	return s
}

// itemName returns the encoded name of the item in s, or an empty string for
// an empty stack.
func itemName(s item.Stack) string {
	if s.Empty() {
		return ""
	}
	name, _ := s.Item().EncodeItem()
	return name
}

// toDispenser converts an item stack for the dispenser rules.
func toDispenser(s item.Stack) dispenser.Stack {
	return dispenser.Stack{Item: itemName(s), Count: s.Count()}
}

// fromDispenser applies the count of a dispenser stack to the stack it was
// created from.
func fromDispenser(orig item.Stack, s dispenser.Stack) item.Stack {
	if s.Count <= 0 {
		return item.Stack{}
	}
	if s.Item != itemName(orig) {
		it, ok := world.ItemByName(s.Item, 0)
		if !ok {
			return orig
		}
		return item.NewStack(it, s.Count)
	}
	return orig.Grow(s.Count - orig.Count())
}

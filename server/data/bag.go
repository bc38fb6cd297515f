package data

// Getter is implemented by anything that stores string keyed values, such as a
// Bag or an adapter around an item stack.
type Getter interface {
	Value(name string) (any, bool)
}

// Get reads the value of key from g. False is returned if the value is absent
// or holds a different type.
func Get[T any](g Getter, key Key[T]) (T, bool) {
	var zero T
	if g == nil {
		return zero, false
	}
	v, ok := g.Value(key.name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Bag is a copy-on-write set of component values.
type Bag struct {
	values map[string]any
}

// Value implements Getter.
func (b Bag) Value(name string) (any, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Len returns the amount of values in the bag.
func (b Bag) Len() int { return len(b.values) }

// With returns a copy of b with the value for key set to v.
func With[T any](b Bag, key Key[T], v T) Bag {
	values := make(map[string]any, len(b.values)+1)
	for k, existing := range b.values {
		values[k] = existing
	}
	values[key.name] = v
	return Bag{values: values}
}

// Without returns a copy of b without a value for key.
func Without[T any](b Bag, key Key[T]) Bag {
	if _, ok := b.values[key.name]; !ok {
		return b
	}
	values := make(map[string]any, len(b.values))
	for k, existing := range b.values {
		if k != key.name {
			values[k] = existing
		}
	}
	return Bag{values: values}
}

// Each calls fn for every value in the bag.
func (b Bag) Each(fn func(name string, v any)) {
	for k, v := range b.values {
		fn(k, v)
	}
}

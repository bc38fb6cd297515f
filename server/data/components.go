package data

import "github.com/google/uuid"

// Built-in components.
var (
	// UUID tags an item or button with the identity of the object it stands
	// for, such as the teleporter a GUI button targets.
	UUID = NewKey[uuid.UUID](Namespace + ":uuid")
	// Overheat counts how hot a machine or tool currently is.
	Overheat = NewKey[int](Namespace + ":overheat")
	// Enable toggles a machine or tool.
	Enable = NewKey[bool](Namespace + ":enable")
	// Upgrade is the upgrade level of a machine or tool.
	Upgrade = NewKey[int](Namespace + ":upgrade")
	// ItemType names the custom item kind of a stack, for example "button".
	ItemType = NewKey[string](Namespace + ":item_type")
	// BlockType names the custom block an item stands in for.
	BlockType = NewKey[string](Namespace + ":block_type")
)

// RegisterDefaults registers every built-in component with r.
func RegisterDefaults(r *Registry) error {
	for _, k := range []Descriptor{UUID, Overheat, Enable, Upgrade, ItemType, BlockType} {
		if err := r.Register(k); err != nil {
			return err
		}
	}
	return nil
}

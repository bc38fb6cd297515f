package event

import "github.com/google/uuid"

// InteractItem is emitted when a player uses the item in their hand without
// targeting a block or entity. Subscribers may cancel the use and request an
// arm swing.
type InteractItem struct {
	Player uuid.UUID
	// Item is the encoded name of the item used, for example
	// "minecraft:compass".
	Item string
	// Values exposes the data components of the used item stack.
	Values interface {
		Value(name string) (any, bool)
	}

	cancel bool
	swing  bool
}

// NewInteractItem creates an InteractItem event.
func NewInteractItem(player uuid.UUID, item string, values interface {
	Value(name string) (any, bool)
}) *InteractItem {
	return &InteractItem{Player: player, Item: item, Values: values}
}

// Cancel prevents the default item use.
func (e *InteractItem) Cancel() { e.cancel = true }

// Cancelled reports if a subscriber cancelled the event.
func (e *InteractItem) Cancelled() bool { return e.cancel }

// Swing requests the player's arm to be swung.
func (e *InteractItem) Swing() { e.swing = true }

// Swung reports if a subscriber requested an arm swing.
func (e *InteractItem) Swung() bool { return e.swing }

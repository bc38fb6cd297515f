package host

import (
	"cmp"
	"slices"
	"sync"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/google/uuid"

	"github.com/oktw/galaxy/server/plugin"
)

// presence records the players accepted by the server until they quit.
type presence struct {
	mu      sync.Mutex
	players map[uuid.UUID]string
}

func (pr *presence) add(id uuid.UUID, name string) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.players == nil {
		pr.players = make(map[uuid.UUID]string)
	}
	pr.players[id] = name
}

func (pr *presence) remove(id uuid.UUID) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	delete(pr.players, id)
}

// summaries returns the recorded players sorted by name.
func (pr *presence) summaries() []plugin.PlayerSummary {
	pr.mu.Lock()
	s := make([]plugin.PlayerSummary, 0, len(pr.players))
	for id, name := range pr.players {
		s = append(s, plugin.PlayerSummary{UUID: id, Name: name})
	}
	pr.mu.Unlock()

	slices.SortFunc(s, func(a, b plugin.PlayerSummary) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.UUID.String(), b.UUID.String()))
	})
	return s
}

// presenceHandler removes the player from the presence once its base handler
// has seen the player quit.
type presenceHandler struct {
	player.Handler
	pr *presence
}

func (h presenceHandler) HandleQuit(p *player.Player) {
	h.Handler.HandleQuit(p)
	h.pr.remove(p.UUID())
}

package host

import (
	"github.com/df-mc/dragonfly/server/player"
)

// Serve starts listening and attaches the plugin event chains to every player
// that joins. Accepted players are reported by PlayerSummaries until they
// quit. base returns the handlers installed below the plugin handlers;
// it may be nil. Serve returns when the server is closed, after disabling
// every plugin.
func (h *Host) Serve(m *Manager, base func(p *player.Player) player.Handler) {
	h.srv.Listen()
	for p := range h.srv.Accept() {
		var bh player.Handler = player.NopHandler{}
		if base != nil {
			if ph := base(p); ph != nil {
				bh = ph
			}
		}
		h.players.add(p.UUID(), p.Name())
		p.Handle(m.PlayerHandler(presenceHandler{Handler: bh, pr: &h.players}))
		p.Inventory().Handle(m.InventoryHandler(nil))
	}
	m.Shutdown()
	h.conf.Log.Info("Plugins shut down.")
}

// Close closes the server. Serve returns once the server is closed.
func (h *Host) Close() error {
	return h.srv.Close()
}

// CloseOnProgramEnd closes the server when the program receives an interrupt
// or termination signal.
func (h *Host) CloseOnProgramEnd() {
	h.srv.CloseOnProgramEnd()
}

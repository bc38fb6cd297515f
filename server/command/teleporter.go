package command

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"

	"github.com/oktw/galaxy/server/teleporter"
)

type createCommand struct {
	playerOnly
	t      Teleporters
	Create cmd.SubCommand     `cmd:"create"`
	Name   string             `cmd:"name"`
	Cross  cmd.Optional[bool] `cmd:"cross"`
}

type removeCommand struct {
	playerOnly
	t      Teleporters
	Remove cmd.SubCommand `cmd:"remove"`
}

type listCommand struct {
	t    Teleporters
	List cmd.SubCommand `cmd:"list"`
}

type openCommand struct {
	playerOnly
	t    Teleporters
	Open cmd.SubCommand `cmd:"open"`
}

type remoteCommand struct {
	playerOnly
	t      Teleporters
	Remote cmd.SubCommand `cmd:"remote"`
}

// NewTeleporter returns the /teleporter command managing the teleporter
// beneath the player.
func NewTeleporter(t Teleporters) cmd.Command {
	return cmd.New(
		"teleporter",
		"Manages teleporters.",
		[]string{"tp-gate"},
		createCommand{t: t},
		removeCommand{t: t},
		listCommand{t: t},
		openCommand{t: t},
		remoteCommand{t: t},
	)
}

func (c createCommand) Run(src cmd.Source, o *cmd.Output, tx *world.Tx) {
	p := src.(*player.Player)
	name := strings.TrimSpace(c.Name)
	if name == "" {
		o.Error("Teleporter name is required.")
		return
	}
	cross, _ := c.Cross.Load()
	t, err := c.t.Create(tx, p, name, cross)
	if err != nil {
		fail(c.t, p, o, err)
		return
	}
	o.Print(c.t.Translate(p, "Respond.TeleporterCreated", t.Name))
}

func (c removeCommand) Run(src cmd.Source, o *cmd.Output, tx *world.Tx) {
	p := src.(*player.Player)
	t, err := c.t.Remove(tx, p)
	if err != nil {
		fail(c.t, p, o, err)
		return
	}
	o.Print(c.t.Translate(p, "Respond.TeleporterRemoved", t.Name))
}

func (c listCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	all, err := c.t.Teleporters()
	if err != nil {
		o.Errorf("List teleporters: %v", err)
		return
	}
	if len(all) == 0 {
		o.Print("No teleporters exist.")
		return
	}
	for _, line := range listLines(all, c.t.PlanetName) {
		o.Print(line)
	}
}

// listLines describes every teleporter, sorted by planet and name.
func listLines(all []teleporter.Teleporter, planetName func(id uuid.UUID) string) []string {
	all = slices.Clone(all)
	slices.SortFunc(all, func(a, b teleporter.Teleporter) int {
		return cmp.Or(
			strings.Compare(planetName(a.Planet), planetName(b.Planet)),
			strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
			strings.Compare(a.ID.String(), b.ID.String()),
		)
	})
	lines := make([]string, 0, len(all))
	for _, t := range all {
		line := fmt.Sprintf("%s: %s (%d, %d, %d)", t.Name, planetName(t.Planet), t.Position[0], t.Position[1], t.Position[2])
		if t.CrossPlanet {
			line += " [cross-planet]"
		}
		lines = append(lines, line)
	}
	return lines
}

func (c openCommand) Run(src cmd.Source, o *cmd.Output, tx *world.Tx) {
	p := src.(*player.Player)
	if err := c.t.Open(tx, p); err != nil {
		fail(c.t, p, o, err)
	}
}

func (c remoteCommand) Run(src cmd.Source, o *cmd.Output, tx *world.Tx) {
	p := src.(*player.Player)
	t, err := c.t.GiveRemote(tx, p)
	if err != nil {
		fail(c.t, p, o, err)
		return
	}
	o.Printf("Received a remote for %s.", t.Name)
}

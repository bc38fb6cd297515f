package galaxy

import (
	"github.com/df-mc/dragonfly/server/entity/effect"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"

	"github.com/oktw/galaxy/server/armor"
)

// applier applies tracked effects to online players.
type applier struct {
	x *Extension
}

func lastingType(kind armor.Kind) (effect.LastingType, bool) {
	t, ok := effect.ByID(int(kind))
	if !ok {
		return nil, false
	}
	lt, ok := t.(effect.LastingType)
	return lt, ok
}

func (a applier) Apply(id uuid.UUID, kind armor.Kind, level int) bool {
	lt, ok := lastingType(kind)
	if !ok {
		a.x.log.Warn("Unknown effect.", "effect", int(kind))
		return a.Online(id)
	}
	return a.x.api.WithPlayer(id, func(_ *world.Tx, p *player.Player) {
		p.AddEffect(effect.New(lt, level, armor.Sentinel).WithoutParticles())
	})
}

func (a applier) Strip(id uuid.UUID, kind armor.Kind) {
	t, ok := effect.ByID(int(kind))
	if !ok {
		return
	}
	a.x.api.WithPlayer(id, func(_ *world.Tx, p *player.Player) {
		p.RemoveEffect(t)
	})
}

func (a applier) Online(id uuid.UUID) bool {
	return a.x.api.WithPlayer(id, func(*world.Tx, *player.Player) {})
}

// armourEffects returns the effects granted by the armour items named. The
// highest level wins when several pieces grant the same effect.
func armourEffects(table []ArmourEffect, worn []string) map[armor.Kind]int {
	effects := make(map[armor.Kind]int)
	for _, name := range worn {
		for _, e := range table {
			if e.Item != name {
				continue
			}
			kind := armor.Kind(e.Effect)
			if lvl := max(e.Level, 1); lvl > effects[kind] {
				effects[kind] = lvl
			}
		}
	}
	return effects
}

// scanArmour brings the tracked effects of every online player in line with
// the armour they wear.
func (x *Extension) scanArmour() {
	for _, s := range x.api.PlayerSummaries() {
		id := s.UUID
		var worn []string
		online := x.api.WithPlayer(id, func(_ *world.Tx, p *player.Player) {
			for _, it := range p.Armour().Items() {
				if it.Empty() {
					continue
				}
				name, _ := it.Item().EncodeItem()
				worn = append(worn, name)
			}
		})
		if !online {
			x.effects.Forget(id)
			continue
		}
		syncArmour(x.effects, x.conf.Effects.Armour, id, worn)
	}
}

// syncArmour offers the effects granted by the armour worn by a player and
// removes the tracked effects it no longer grants.
func syncArmour(t *armor.Tracker, table []ArmourEffect, id uuid.UUID, worn []string) {
	want := armourEffects(table, worn)
	for kind := range t.Effects(id) {
		if _, ok := want[kind]; !ok {
			t.RemoveEffect(id, kind)
		}
	}
	have := t.Effects(id)
	for kind, level := range want {
		if have[kind] != level {
			t.OfferEffect(id, kind, level)
		}
	}
}

package galaxy

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/player/form"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/text"
	"golang.org/x/text/language"

	"github.com/oktw/galaxy/server/data"
	"github.com/oktw/galaxy/server/gui"
	"github.com/oktw/galaxy/server/lang"
	"github.com/oktw/galaxy/server/planet"
	"github.com/oktw/galaxy/server/teleporter"
)

// Icons of target buttons by planet type.
var planetIcons = map[planet.Type]string{
	planet.Normal: "minecraft:grass_block",
	planet.Nether: "minecraft:netherrack",
	planet.End:    "minecraft:end_stone",
}

// Form images of the icons used by buttons.
var iconImages = map[string]string{
	"minecraft:grass_block": "textures/blocks/grass_side_carried",
	"minecraft:netherrack":  "textures/blocks/netherrack",
	"minecraft:end_stone":   "textures/blocks/end_stone",
	"minecraft:arrow":       "textures/items/arrow",
	"minecraft:paper":       "textures/items/paper",
	"minecraft:compass":     "textures/items/compass_item",
}

// navigator creates translated navigation buttons.
type navigator struct {
	tr  *lang.Translator
	tag language.Tag
}

func (n navigator) Previous(int) gui.Button {
	return gui.Button{Item: "minecraft:arrow", Name: n.tr.Translate(n.tag, "UI.Button.PreviousPage")}
}

func (n navigator) Next(int) gui.Button {
	return gui.Button{Item: "minecraft:arrow", Name: n.tr.Translate(n.tag, "UI.Button.NextPage")}
}

func (n navigator) Page(page int) gui.Button {
	return gui.Button{Item: "minecraft:paper", Name: n.tr.Translate(n.tag, "UI.Button.Page", page+1)}
}

// targetButton creates the button selecting target from source.
func targetButton(tr *lang.Translator, tag language.Tag, c *planet.Catalogue, source, target teleporter.Teleporter) gui.Button {
	p, _ := c.Get(target.Planet)
	where := fmt.Sprintf("%s (%d, %d, %d)", c.Name(target.Planet), target.Position[0], target.Position[1], target.Position[2])
	lore := []string{tr.Translate(tag, "UI.Tip.Target", where)}
	if target.Planet == source.Planet {
		lore = append(lore, tr.Translate(tag, "UI.Tip.Distance", int(math.Round(source.Distance(target)))))
	}
	lore = append(lore, tr.Translate(tag, "UI.Tip.CanCrossPlanet", tr.Bool(tag, target.CrossPlanet)))
	return gui.Button{
		Item: planetIcons[p.Type],
		Name: text.Colourf("<yellow><b>%s</b></yellow>", target.Name),
		Lore: lore,
		Data: data.With(data.With(data.Bag{}, data.UUID, target.ID), data.ItemType, "button"),
	}
}

// title returns the window title for source.
func title(tr *lang.Translator, tag language.Tag, source teleporter.Teleporter) string {
	if source.CrossPlanet {
		return tr.Translate(tag, "UI.Title.AdvancedTeleporter", source.Name)
	}
	return tr.Translate(tag, "UI.Title.Teleporter", source.Name)
}

// targetSource lists the targets available from source.
func (x *Extension) targetSource(tag language.Tag, source teleporter.Teleporter) gui.Source {
	return func(ctx context.Context, skip, limit int) ([]gui.Button, bool, error) {
		targets, err := x.helper.AvailableTargets(source)
		if err != nil {
			return nil, false, err
		}
		return pageOf(targets, skip, limit, func(t teleporter.Teleporter) gui.Button {
			return targetButton(x.tr, tag, x.planets.Catalogue(), source, t)
		})
	}
}

// allSource lists every teleporter without making them selectable.
func (x *Extension) allSource(tag language.Tag) gui.Source {
	return func(ctx context.Context, skip, limit int) ([]gui.Button, bool, error) {
		all, err := x.helper.All()
		if err != nil {
			return nil, false, err
		}
		return pageOf(all, skip, limit, func(t teleporter.Teleporter) gui.Button {
			b := targetButton(x.tr, tag, x.planets.Catalogue(), teleporter.Teleporter{}, t)
			b.Data = data.With(data.Bag{}, data.ItemType, "button")
			return b
		})
	}
}

func pageOf[T any](all []T, skip, limit int, button func(T) gui.Button) ([]gui.Button, bool, error) {
	skip = min(max(skip, 0), len(all))
	end := min(skip+limit, len(all))
	buttons := make([]gui.Button, 0, end-skip)
	for _, v := range all[skip:end] {
		buttons = append(buttons, button(v))
	}
	return buttons, end < len(all), nil
}

// menu renders a page view as a form. Each form shows the current page of
// the view.
type menu struct {
	x      *Extension
	view   *gui.PageView
	source *teleporter.Teleporter

	slots   []int
	buttons []form.Button
}

func buttonText(b gui.Button) string {
	if len(b.Lore) == 0 {
		return b.Name
	}
	return b.Name + "\n" + text.Colourf("<dark-grey>%s</dark-grey>", b.Lore[0])
}

// open opens view for p and shows it. source is the teleporter whose targets
// the view lists, nil for views without selectable buttons.
func (x *Extension) open(p *player.Player, view *gui.PageView, source *teleporter.Teleporter) error {
	x.sessions.Open(p.UUID(), view)
	if err := x.show(p, &menu{x: x, view: view, source: source}); err != nil {
		x.sessions.Close(p.UUID(), view)
		return err
	}
	return nil
}

func (x *Extension) show(p *player.Player, m *menu) error {
	grid, err := m.view.Render(x.api.Context())
	if err != nil {
		return fmt.Errorf("render view: %w", err)
	}
	for slot, b := range grid {
		if b.Empty() {
			continue
		}
		m.slots = append(m.slots, slot)
		m.buttons = append(m.buttons, form.NewButton(buttonText(b), iconImages[b.Item]))
	}
	p.SendForm(form.NewMenu(m, m.view.Title()).WithButtons(m.buttons...))
	return nil
}

func (m *menu) Submit(submitter form.Submitter, pressed form.Button, _ *world.Tx) {
	p, ok := submitter.(*player.Player)
	if !ok {
		return
	}
	i := slices.Index(m.buttons, pressed)
	if i < 0 {
		m.x.sessions.Close(p.UUID(), m.view)
		return
	}
	click, err := m.view.Click(m.x.api.Context(), m.slots[i])
	if err != nil {
		m.x.log.Error("Click selection window.", "player", p.Name(), "error", err)
		m.x.sessions.Close(p.UUID(), m.view)
		return
	}
	if click.Kind != gui.ClickItem || m.source == nil {
		// Navigation and inert buttons show the window again.
		if err := m.x.show(p, &menu{x: m.x, view: m.view, source: m.source}); err != nil {
			m.x.log.Error("Show selection window.", "player", p.Name(), "error", err)
			m.x.sessions.Close(p.UUID(), m.view)
		}
		return
	}
	m.x.sessions.Close(p.UUID(), m.view)
	target, ok := data.Get(click.Button.Data, data.UUID)
	if !ok {
		return
	}
	id := p.UUID()
	_ = m.x.transfers.Start(teleporter.Request{
		Player: id,
		Source: *m.source,
		Target: target,
		Done:   func() { m.x.closeWindows(id) },
	})
}

func (m *menu) Close(submitter form.Submitter, _ *world.Tx) {
	if p, ok := submitter.(*player.Player); ok {
		m.x.sessions.Close(p.UUID(), m.view)
	}
}

var (
	_ form.MenuSubmittable = (*menu)(nil)
	_ form.Closer          = (*menu)(nil)
)

// OpenTeleporter opens the target selection of the teleporter source for p.
func (x *Extension) OpenTeleporter(p *player.Player, source teleporter.Teleporter) error {
	tag := p.Locale()
	view := gui.NewPageView(title(x.tr, tag, source), x.targetSource(tag, source), navigator{tr: x.tr, tag: tag})
	return x.open(p, view, &source)
}

// OpenTest opens a window listing every teleporter.
func (x *Extension) OpenTest(p *player.Player) error {
	tag := p.Locale()
	view := gui.NewPageView(x.tr.Translate(tag, "UI.Title.Test"), x.allSource(tag), navigator{tr: x.tr, tag: tag})
	return x.open(p, view, nil)
}

func (x *Extension) translate(p *player.Player, key string, args ...any) string {
	return x.tr.Translate(p.Locale(), key, args...)
}

// Translate translates key for p.
func (x *Extension) Translate(p *player.Player, key string, args ...any) string {
	return x.translate(p, key, args...)
}

// PlanetName returns the name of the planet with the ID passed.
func (x *Extension) PlanetName(id uuid.UUID) string {
	return x.planets.Catalogue().Name(id)
}

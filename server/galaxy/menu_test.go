package galaxy

import (
	"slices"
	"strings"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"golang.org/x/text/language"

	"github.com/oktw/galaxy/server/armor"
	"github.com/oktw/galaxy/server/data"
	"github.com/oktw/galaxy/server/gui"
	"github.com/oktw/galaxy/server/lang"
	"github.com/oktw/galaxy/server/planet"
	"github.com/oktw/galaxy/server/teleporter"
)

func fixtures(t *testing.T) (*lang.Translator, *planet.Catalogue) {
	t.Helper()
	tr, err := lang.Load("en_US")
	if err != nil {
		t.Fatalf("lang.Load() error = %v", err)
	}
	cat, err := DefaultConfig().Catalogue()
	if err != nil {
		t.Fatalf("Catalogue() error = %v", err)
	}
	return tr, cat
}

func TestTargetButton(t *testing.T) {
	t.Parallel()

	tr, cat := fixtures(t)
	earth, _ := cat.Builtin(planet.Normal)
	nether, _ := cat.Builtin(planet.Nether)
	source := teleporter.New("Home", earth.ID, cube.Pos{0, 64, 0}, true)

	near := teleporter.New("Farm", earth.ID, cube.Pos{3, 64, 4}, false)
	b := targetButton(tr, language.AmericanEnglish, cat, source, near)
	if b.Item != "minecraft:grass_block" {
		t.Fatalf("Item = %q, want grass_block", b.Item)
	}
	if !strings.Contains(b.Name, "Farm") {
		t.Fatalf("Name = %q, want it to contain Farm", b.Name)
	}
	want := []string{"Target: Overworld (3, 64, 4)", "Distance: 5 blocks", "Can cross planet: No"}
	if !slices.Equal(b.Lore, want) {
		t.Fatalf("Lore = %q, want %q", b.Lore, want)
	}
	if id, ok := data.Get(b.Data, data.UUID); !ok || id != near.ID {
		t.Fatalf("Data UUID = %v, %v, want %v", id, ok, near.ID)
	}
	if typ, _ := data.Get(b.Data, data.ItemType); typ != itemButton {
		t.Fatalf("Data ItemType = %q, want %q", typ, itemButton)
	}

	far := teleporter.New("Fortress", nether.ID, cube.Pos{10, 40, 10}, true)
	b = targetButton(tr, language.AmericanEnglish, cat, source, far)
	if b.Item != "minecraft:netherrack" {
		t.Fatalf("Item = %q, want netherrack", b.Item)
	}
	want = []string{"Target: Nether (10, 40, 10)", "Can cross planet: Yes"}
	if !slices.Equal(b.Lore, want) {
		t.Fatalf("Lore = %q, want %q", b.Lore, want)
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()

	tr, _ := fixtures(t)
	plain := teleporter.Teleporter{Name: "Spawn"}
	if got := title(tr, language.AmericanEnglish, plain); got != "Teleporter: Spawn" {
		t.Fatalf("title() = %q", got)
	}
	plain.CrossPlanet = true
	if got := title(tr, language.AmericanEnglish, plain); got != "Advanced Teleporter: Spawn" {
		t.Fatalf("title() = %q", got)
	}
}

func TestPageOf(t *testing.T) {
	t.Parallel()

	all := []string{"a", "b", "c", "d", "e"}
	button := func(s string) gui.Button { return gui.Button{Name: s} }
	cases := []struct {
		skip, limit int
		want        []string
		more        bool
	}{
		{0, 2, []string{"a", "b"}, true},
		{3, 2, []string{"d", "e"}, false},
		{4, 10, []string{"e"}, false},
		{9, 2, nil, false},
		{-1, 1, []string{"a"}, true},
	}
	for _, c := range cases {
		buttons, more, err := pageOf(all, c.skip, c.limit, button)
		if err != nil {
			t.Fatalf("pageOf(%d, %d) error = %v", c.skip, c.limit, err)
		}
		var names []string
		for _, b := range buttons {
			names = append(names, b.Name)
		}
		if !slices.Equal(names, c.want) || more != c.more {
			t.Fatalf("pageOf(%d, %d) = %q, %v, want %q, %v", c.skip, c.limit, names, more, c.want, c.more)
		}
	}
}

func TestArmourEffects(t *testing.T) {
	t.Parallel()

	table := []ArmourEffect{
		{Item: "minecraft:turtle_helmet", Effect: 13, Level: 1},
		{Item: "minecraft:diamond_boots", Effect: 1, Level: 0},
		{Item: "minecraft:netherite_chestplate", Effect: 13, Level: 3},
	}
	got := armourEffects(table, []string{"minecraft:turtle_helmet", "minecraft:netherite_chestplate", "minecraft:diamond_boots", "minecraft:air"})
	want := map[armor.Kind]int{13: 3, 1: 1}
	if len(got) != len(want) {
		t.Fatalf("armourEffects() = %v, want %v", got, want)
	}
	for k, lvl := range want {
		if got[k] != lvl {
			t.Fatalf("armourEffects()[%d] = %d, want %d", k, got[k], lvl)
		}
	}
	if got := armourEffects(table, nil); len(got) != 0 {
		t.Fatalf("armourEffects(nil) = %v, want empty", got)
	}
}

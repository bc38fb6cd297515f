package dispenser

// Sound is the sound played when a plant is placed.
type Sound string

// Placement sounds used by the built-in rules.
const (
	SoundCropPlant          Sound = "item.crop.plant"
	SoundNetherWartPlant    Sound = "item.nether_wart.plant"
	SoundSweetBerryPlace    Sound = "block.sweet_berry_bush.place"
	SoundGrassPlace         Sound = "block.grass.place"
	SoundWoodPlace          Sound = "block.wood.place"
	SoundBambooSaplingPlace Sound = "block.bamboo_sapling.place"
	SoundFungusPlace        Sound = "block.fungus.place"
	SoundWoolPlace          Sound = "block.wool.place"
)

// Block and item names referenced by the rules.
const (
	Air           = "minecraft:air"
	SugarCane     = "minecraft:reeds"
	FrostedIce    = "minecraft:frosted_ice"
	Cactus        = "minecraft:cactus"
	Cocoa         = "minecraft:cocoa"
	RedMushroom   = "minecraft:red_mushroom"
	BrownMushroom = "minecraft:brown_mushroom"
)

// Rule describes how a dispenser plants one item.
type Rule struct {
	// Item is the dispensed item.
	Item string
	// Block is the plant block placed.
	Block string
	// Supports lists the blocks the plant may be placed on. For cocoa these are
	// the blocks the pod attaches to.
	Supports []string
	Sound    Sound
}

func (r Rule) supports(name string) bool {
	for _, s := range r.Supports {
		if s == name {
			return true
		}
	}
	return false
}

var (
	farmland    = []string{"minecraft:farmland"}
	saplingOn   = []string{"minecraft:grass_block", "minecraft:dirt", "minecraft:podzol", "minecraft:farmland"}
	fungusOn    = []string{"minecraft:grass_block", "minecraft:dirt", "minecraft:podzol", "minecraft:coarse_dirt", "minecraft:farmland", "minecraft:crimson_nylium", "minecraft:warped_nylium", "minecraft:soul_soil", "minecraft:mycelium"}
	sugarCaneOn = []string{"minecraft:grass_block", "minecraft:dirt", "minecraft:podzol", "minecraft:sand", "minecraft:red_sand", "minecraft:coarse_dirt"}
)

// DefaultRules returns the built-in plant rules.
func DefaultRules() []Rule {
	return []Rule{
		{Item: "minecraft:wheat_seeds", Block: "minecraft:wheat", Supports: farmland, Sound: SoundCropPlant},
		{Item: "minecraft:potato", Block: "minecraft:potatoes", Supports: farmland, Sound: SoundCropPlant},
		{Item: "minecraft:carrot", Block: "minecraft:carrots", Supports: farmland, Sound: SoundCropPlant},
		{Item: "minecraft:melon_seeds", Block: "minecraft:melon_stem", Supports: farmland, Sound: SoundCropPlant},
		{Item: "minecraft:pumpkin_seeds", Block: "minecraft:pumpkin_stem", Supports: farmland, Sound: SoundCropPlant},
		{Item: "minecraft:beetroot_seeds", Block: "minecraft:beetroot", Supports: farmland, Sound: SoundCropPlant},
		{Item: "minecraft:nether_wart", Block: "minecraft:nether_wart", Supports: []string{"minecraft:soul_sand"}, Sound: SoundNetherWartPlant},
		{Item: "minecraft:sweet_berries", Block: "minecraft:sweet_berry_bush", Supports: []string{"minecraft:grass_block", "minecraft:dirt", "minecraft:podzol", "minecraft:coarse_dirt", "minecraft:farmland"}, Sound: SoundSweetBerryPlace},
		{Item: "minecraft:oak_sapling", Block: "minecraft:oak_sapling", Supports: saplingOn, Sound: SoundGrassPlace},
		{Item: "minecraft:birch_sapling", Block: "minecraft:birch_sapling", Supports: saplingOn, Sound: SoundGrassPlace},
		{Item: "minecraft:spruce_sapling", Block: "minecraft:spruce_sapling", Supports: saplingOn, Sound: SoundGrassPlace},
		{Item: "minecraft:jungle_sapling", Block: "minecraft:jungle_sapling", Supports: saplingOn, Sound: SoundGrassPlace},
		{Item: "minecraft:acacia_sapling", Block: "minecraft:acacia_sapling", Supports: saplingOn, Sound: SoundGrassPlace},
		{Item: "minecraft:dark_oak_sapling", Block: "minecraft:dark_oak_sapling", Supports: saplingOn, Sound: SoundGrassPlace},
		{Item: "minecraft:sugar_cane", Block: SugarCane, Supports: sugarCaneOn, Sound: SoundGrassPlace},
		{Item: "minecraft:chorus_flower", Block: "minecraft:chorus_flower", Supports: []string{"minecraft:end_stone"}, Sound: SoundWoodPlace},
		{Item: "minecraft:bamboo", Block: "minecraft:bamboo_sapling", Supports: []string{"minecraft:grass_block", "minecraft:dirt", "minecraft:podzol", "minecraft:sand", "minecraft:red_sand", "minecraft:coarse_dirt", "minecraft:gravel", "minecraft:mycelium"}, Sound: SoundBambooSaplingPlace},
		{Item: "minecraft:red_mushroom", Block: RedMushroom, Sound: SoundGrassPlace},
		{Item: "minecraft:brown_mushroom", Block: BrownMushroom, Sound: SoundGrassPlace},
		{Item: "minecraft:crimson_fungus", Block: "minecraft:crimson_fungus", Supports: fungusOn, Sound: SoundFungusPlace},
		{Item: "minecraft:warped_fungus", Block: "minecraft:warped_fungus", Supports: fungusOn, Sound: SoundFungusPlace},
		{Item: "minecraft:cocoa_beans", Block: Cocoa, Supports: []string{"minecraft:jungle_log", "minecraft:jungle_wood", "minecraft:stripped_jungle_log", "minecraft:stripped_jungle_wood"}, Sound: SoundWoodPlace},
		{Item: "minecraft:cactus", Block: Cactus, Supports: []string{"minecraft:sand", "minecraft:red_sand"}, Sound: SoundWoolPlace},
	}
}

package galaxy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/df-mc/worldupgrader/blockupgrader"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml"

	"github.com/oktw/galaxy/server/armor"
	"github.com/oktw/galaxy/server/planet"
	"github.com/oktw/galaxy/server/teleporter"
)

// Config is the configuration of the extension, stored in galaxy.toml in the
// plugin data directory.
type Config struct {
	Teleporter struct {
		// MaxFrames is the maximum amount of frame blocks around a teleporter.
		MaxFrames int
		// FrameBlocks are the names of the blocks that form teleporter frames.
		FrameBlocks []string
		// Driver is the database storing teleporters: leveldb, sqlite or
		// postgres.
		Driver string
		// Database is the LevelDB directory or SQLite file relative to the
		// plugin data directory, or the PostgreSQL connection string.
		Database string
		// Concurrency is the maximum amount of transfers running at once.
		Concurrency int64
	}
	Effects struct {
		// RefreshSeconds is the interval in seconds between two refreshes of
		// armour effects.
		RefreshSeconds int
		// Armour lists the effects granted by worn armour pieces.
		Armour []ArmourEffect
	}
	ResourcePack struct {
		// URL is the location of the resource pack. Empty disables it.
		URL string
		// Required makes players download the resource pack to join.
		Required bool
	}
	Language struct {
		// Default is the language used for players whose locale has no
		// translation.
		Default string
	}
	// Planets are the worlds teleporters may be built on.
	Planets []PlanetConfig
}

// ArmourEffect is an effect granted while an armour item is worn.
type ArmourEffect struct {
	// Item is the name of the armour item, such as minecraft:turtle_helmet.
	Item string
	// Effect is the numeric effect ID.
	Effect int
	Level  int
}

// PlanetConfig is a planet as written in the configuration.
type PlanetConfig struct {
	ID   string
	Name string
	// Type is normal, nether or end.
	Type string
	// Folder is the world directory. Empty selects the server's own world of
	// the planet type.
	Folder string
}

// builtinPlanet derives a stable planet ID for the built-in world of t.
func builtinPlanet(t planet.Type) PlanetConfig {
	name := map[planet.Type]string{planet.Normal: "Overworld", planet.Nether: "Nether", planet.End: "End"}[t]
	return PlanetConfig{
		ID:   uuid.NewSHA1(uuid.NameSpaceOID, []byte("galaxy:planet:"+t.String())).String(),
		Name: name,
		Type: t.String(),
	}
}

// DefaultConfig returns the configuration written when none exists.
func DefaultConfig() Config {
	c := Config{}
	c.Teleporter.MaxFrames = 64
	c.Teleporter.FrameBlocks = []string{"minecraft:gold_block"}
	c.Teleporter.Driver = "leveldb"
	c.Teleporter.Database = "teleporters"
	c.Teleporter.Concurrency = 16
	c.Effects.RefreshSeconds = int(armor.RefreshInterval / time.Second)
	c.Effects.Armour = []ArmourEffect{{Item: "minecraft:turtle_helmet", Effect: 13, Level: 1}}
	c.Language.Default = "en_US"
	c.Planets = []PlanetConfig{builtinPlanet(planet.Normal), builtinPlanet(planet.Nether), builtinPlanet(planet.End)}
	return c
}

// Normalize fills in defaults for missing values and brings frame block
// names up to date.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Teleporter.MaxFrames <= 0 {
		c.Teleporter.MaxFrames = def.Teleporter.MaxFrames
	}
	if c.Teleporter.Driver = strings.ToLower(strings.TrimSpace(c.Teleporter.Driver)); c.Teleporter.Driver == "" {
		c.Teleporter.Driver = def.Teleporter.Driver
	}
	if strings.TrimSpace(c.Teleporter.Database) == "" {
		c.Teleporter.Database = def.Teleporter.Database
	}
	if c.Teleporter.Concurrency <= 0 {
		c.Teleporter.Concurrency = def.Teleporter.Concurrency
	}
	if c.Effects.RefreshSeconds <= 0 {
		c.Effects.RefreshSeconds = def.Effects.RefreshSeconds
	}
	if strings.TrimSpace(c.Language.Default) == "" {
		c.Language.Default = def.Language.Default
	}
	if len(c.Planets) == 0 {
		c.Planets = def.Planets
	}

	frames := make([]string, 0, len(c.Teleporter.FrameBlocks))
	for _, name := range c.Teleporter.FrameBlocks {
		if name = upgradeBlockName(name); name != "" && !slices.Contains(frames, name) {
			frames = append(frames, name)
		}
	}
	if len(frames) == 0 {
		frames = def.Teleporter.FrameBlocks
	}
	c.Teleporter.FrameBlocks = frames
}

// upgradeBlockName namespaces name and maps legacy block names to their
// current name.
func upgradeBlockName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	if !strings.Contains(name, ":") {
		name = "minecraft:" + name
	}
	return blockupgrader.Upgrade(blockupgrader.BlockState{Name: name, Properties: map[string]any{}}).Name
}

// RefreshInterval returns the interval between two armour effect refreshes.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.Effects.RefreshSeconds) * time.Second
}

// Catalogue builds the planet catalogue from the configured planets.
func (c Config) Catalogue() (*planet.Catalogue, error) {
	planets := make([]planet.Planet, 0, len(c.Planets))
	for i, pc := range c.Planets {
		id, err := uuid.Parse(pc.ID)
		if err != nil {
			return nil, fmt.Errorf("planet %d (%s): parse id: %w", i, pc.Name, err)
		}
		t, err := planet.ParseType(pc.Type)
		if err != nil {
			return nil, fmt.Errorf("planet %d (%s): %w", i, pc.Name, err)
		}
		planets = append(planets, planet.Planet{ID: id, Name: pc.Name, Type: t, Folder: pc.Folder})
	}
	return planet.NewCatalogue(planets)
}

// OpenStore opens the teleporter store configured, resolving relative paths
// against dir.
func (c Config) OpenStore(ctx context.Context, dir string) (teleporter.Store, error) {
	path := c.Teleporter.Database
	if c.Teleporter.Driver != teleporter.DriverPostgres && !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	switch c.Teleporter.Driver {
	case "leveldb":
		return teleporter.OpenLevelStore(path)
	case "memory":
		return teleporter.NewMemoryStore(), nil
	default:
		return teleporter.OpenSQLStore(ctx, c.Teleporter.Driver, path)
	}
}

// LoadConfig reads the configuration at path. A default configuration is
// written to path if the file does not exist.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := writeConfig(path, c); err != nil {
			return c, err
		}
		return c, nil
	} else if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(contents, &c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	c.Normalize()
	return c, nil
}

func writeConfig(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	encoded, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Command galaxy runs a dragonfly server with the galaxy extension compiled
// in. Plugins found in the plugin directory are loaded next to it.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player/chat"
	"github.com/pelletier/go-toml"

	"github.com/oktw/galaxy/server/command"
	"github.com/oktw/galaxy/server/console"
	"github.com/oktw/galaxy/server/galaxy"
	"github.com/oktw/galaxy/server/host"
	"github.com/oktw/galaxy/server/plugin"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	chat.Global.Subscribe(chat.StdoutSubscriber{})

	uc := server.DefaultConfig()
	if err := loadTOML("config.toml", &uc); err != nil {
		log.Error("Load server config.", "error", err)
		os.Exit(1)
	}
	conf, err := uc.Config(log)
	if err != nil {
		log.Error("Build server config.", "error", err)
		os.Exit(1)
	}

	pc := plugin.Config{Enabled: true, Directory: "plugins", Autoload: true}
	if err := loadTOML("plugins.toml", &pc); err != nil {
		log.Error("Load plugin config.", "error", err)
		os.Exit(1)
	}
	if err := attachResourcePack(&conf, pc, log); err != nil {
		log.Warn("Resource pack unavailable.", "error", err)
	}

	h := host.New(conf)
	h.CloseOnProgramEnd()

	m := h.NewManager(pc)
	if _, err := m.Register("galaxy", galaxy.Init); err != nil {
		log.Error("Enable galaxy.", "error", err)
	}
	m.LoadConfigured()
	cmd.Register(command.NewPlugins(m))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go console.New(console.WorldExecutor(h.World()), log).Run(ctx)

	h.Serve(m, nil)
}

// attachResourcePack adds the resource pack configured for the galaxy
// extension to conf. Packs have to be known before the server is created.
func attachResourcePack(conf *server.Config, pc plugin.Config, log *slog.Logger) error {
	dir := pc.DataDirectoryOf("galaxy")
	gc, err := galaxy.LoadConfig(filepath.Join(dir, galaxy.ConfigFile))
	if err != nil {
		return err
	}
	pack, err := gc.LoadResourcePack(context.Background(), filepath.Join(dir, "resources"))
	if err != nil || pack == nil {
		return err
	}
	conf.Resources = append(conf.Resources, pack)
	conf.ResourcesRequired = conf.ResourcesRequired || gc.ResourcePack.Required
	log.Info("Resource pack loaded.", "url", gc.ResourcePack.URL, "uuid", pack.UUID())
	return nil
}

// loadTOML decodes the file at path into v. If the file does not exist, v is
// written to path instead.
func loadTOML[T any](path string, v *T) error {
	contents, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		encoded, err := toml.Marshal(*v)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		if err := os.WriteFile(path, encoded, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	} else if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(contents, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

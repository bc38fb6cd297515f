package command

import (
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"

	"github.com/oktw/galaxy/server/plugin"
)

// Plugins is the plugin manager operated by the plugins command.
type Plugins interface {
	Enabled() bool
	Infos() []plugin.Info
	Enable(path string) (plugin.Info, error)
	Disable(name string) (plugin.Info, error)
}

// consoleOnly is embedded by commands that players may not run.
type consoleOnly struct{}

func (consoleOnly) Allow(src cmd.Source) bool {
	_, ok := src.(*player.Player)
	return !ok
}

type pluginListCommand struct {
	consoleOnly
	List cmd.SubCommand `cmd:"list"`
	m    Plugins
}

type pluginEnableCommand struct {
	consoleOnly
	Enable cmd.SubCommand `cmd:"enable"`
	File   string         `cmd:"file"`
	m      Plugins
}

type pluginDisableCommand struct {
	consoleOnly
	Disable cmd.SubCommand `cmd:"disable"`
	Name    string         `cmd:"name"`
	m       Plugins
}

// NewPlugins returns the command managing the plugins of m from the console.
func NewPlugins(m Plugins) cmd.Command {
	return cmd.New("plugins", "Lists, enables and disables plugins.", []string{"pl"},
		pluginListCommand{m: m},
		pluginEnableCommand{m: m},
		pluginDisableCommand{m: m},
	)
}

func (c pluginListCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	if !c.m.Enabled() {
		o.Print("Plugin subsystem disabled.")
		return
	}
	lines := pluginLines(c.m.Infos())
	if len(lines) == 0 {
		o.Print("No plugins loaded.")
		return
	}
	for _, line := range lines {
		o.Print(line)
	}
}

// pluginLines describes every plugin, sorted by name.
func pluginLines(infos []plugin.Info) []string {
	infos = slices.Clone(infos)
	slices.SortStableFunc(infos, func(a, b plugin.Info) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	lines := make([]string, 0, len(infos))
	for _, info := range infos {
		line := info.Name
		if info.Version != "" {
			line += " " + info.Version
		}
		if info.Static() {
			line += " (built in)"
		} else {
			line += " (" + info.Path + ")"
		}
		lines = append(lines, line)
	}
	return lines
}

func (c pluginEnableCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	file := strings.TrimSpace(c.File)
	if file == "" {
		o.Error("Plugin file path is required.")
		return
	}
	info, err := c.m.Enable(file)
	if err != nil {
		o.Errorf("Enable %s: %v", file, err)
		return
	}
	o.Printf("Enabled %s from %s.", info.Name, info.Path)
}

func (c pluginDisableCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		o.Error("Plugin name is required.")
		return
	}
	info, err := c.m.Disable(name)
	if err != nil {
		o.Errorf("Disable %s: %v", name, err)
		return
	}
	o.Printf("Disabled %s.", info.Name)
}

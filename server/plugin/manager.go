package plugin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	goplugin "plugin"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/df-mc/dragonfly/server/item/inventory"
	"github.com/df-mc/dragonfly/server/player"
	"golang.org/x/mod/semver"
)

// factorySymbols are the exported symbols probed for a Factory, in order.
var factorySymbols = []string{"Init", "New"}

type loaded[S any, C any] struct {
	info   Info
	plugin Plugin
	api    *API[S, C]
	cancel context.CancelFunc
}

// Manager enables, tracks and disables plugins.
type Manager[S any, C any] struct {
	host Host[S, C]
	conf Config
	log  *slog.Logger

	once    sync.Once
	mu      sync.RWMutex
	plugins []loaded[S, C]
	events  *eventHub[S, C]
}

// NewManager returns a Manager running plugins on host.
func NewManager[S any, C any](host Host[S, C], conf Config) *Manager[S, C] {
	log := host.Logger()
	if log == nil {
		log = slog.Default()
	}
	conf.Files = slices.Clone(conf.Files)
	m := &Manager[S, C]{host: host, conf: conf, log: log.With("subsystem", "plugin")}
	m.events = newEventHub(m)
	return m
}

// Enabled reports if the plugin subsystem runs.
func (m *Manager[S, C]) Enabled() bool {
	return m.conf.Enabled
}

// Directory returns the directory holding plugin binaries.
func (m *Manager[S, C]) Directory() string {
	return m.conf.directory()
}

// DataRoot returns the parent directory of every plugin data directory.
func (m *Manager[S, C]) DataRoot() string {
	return m.conf.DataRoot()
}

// ResolvePath resolves a relative plugin path against Directory.
func (m *Manager[S, C]) ResolvePath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	if filepath.IsAbs(cleaned) {
		return cleaned
	}
	dir := filepath.Clean(m.Directory())
	// Paths that already start with the plugin directory are not joined twice.
	if rel, err := filepath.Rel(dir, cleaned); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return cleaned
	}
	return filepath.Join(dir, cleaned)
}

// LoadConfigured loads the plugin binaries named by the configuration. It
// runs only once.
func (m *Manager[S, C]) LoadConfigured() {
	m.once.Do(m.loadConfigured)
}

func (m *Manager[S, C]) loadConfigured() {
	if !m.conf.Enabled {
		m.log.Debug("Plugin system disabled.")
		return
	}
	seen := make(map[string]struct{})
	var paths []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			paths = append(paths, path)
		}
	}
	if m.conf.Autoload {
		entries, err := os.ReadDir(m.Directory())
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			m.log.Error("Read plugin directory.", "dir", m.Directory(), "error", err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".so") {
				add(filepath.Join(m.Directory(), entry.Name()))
			}
		}
	}
	for _, file := range m.conf.Files {
		add(m.ResolvePath(file))
	}
	slices.Sort(paths)
	for _, path := range paths {
		if _, err := m.Enable(path); err != nil {
			m.log.Error("Enable plugin.", "path", path, "error", err)
		}
	}
}

// Register enables a plugin compiled into the server binary. name is used
// until the plugin reports its own name.
func (m *Manager[S, C]) Register(name string, factory Factory[S, C]) (Info, error) {
	if !m.Enabled() {
		return Info{}, ErrDisabled
	}
	return m.enable(name, "", factory, "static")
}

// Enable loads a plugin binary and enables it.
func (m *Manager[S, C]) Enable(path string) (Info, error) {
	if !m.Enabled() {
		return Info{}, ErrDisabled
	}
	resolved := m.ResolvePath(path)
	m.mu.RLock()
	for _, p := range m.plugins {
		if p.info.Path == resolved {
			m.mu.RUnlock()
			return p.info, ErrAlreadyLoaded
		}
	}
	m.mu.RUnlock()

	mod, err := goplugin.Open(resolved)
	if err != nil {
		return Info{}, fmt.Errorf("open plugin: %w", err)
	}
	factory, symbol, err := lookupFactory[S, C](mod)
	if err != nil {
		return Info{}, fmt.Errorf("locate plugin factory: %w", err)
	}
	return m.enable(baseName(resolved), resolved, factory, symbol)
}

func (m *Manager[S, C]) enable(name, path string, factory Factory[S, C], symbol string) (info Info, err error) {
	ctx, cancel := context.WithCancel(context.Background())
	api := newAPI(m, name, ctx)
	defer func() {
		if err != nil {
			cancel()
			m.events.clear(api.Name())
		}
	}()
	if err := os.MkdirAll(api.DataDirectory(), 0o755); err != nil {
		return Info{}, fmt.Errorf("create plugin data directory: %w", err)
	}

	p, err := factory(api)
	if err != nil {
		return Info{}, fmt.Errorf("initialise plugin via %s: %w", symbol, err)
	}
	if p == nil {
		return Info{}, fmt.Errorf("initialise plugin via %s: factory returned nil", symbol)
	}
	info = Info{Name: p.Name(), Path: path}
	if info.Name == "" {
		info.Name = name
	}
	if v, ok := p.(VersionedPlugin); ok {
		if info.Version, err = canonicalVersion(v.Version()); err != nil {
			_ = p.Close()
			return Info{}, err
		}
	}
	if info.Name != name {
		m.events.rename(name, info.Name)
		api.setName(info.Name)
	}

	m.mu.Lock()
	for _, existing := range m.plugins {
		if strings.EqualFold(existing.info.Name, info.Name) {
			m.mu.Unlock()
			_ = p.Close()
			return Info{}, fmt.Errorf("%w: %s", ErrNameConflict, info.Name)
		}
	}
	m.plugins = append(m.plugins, loaded[S, C]{info: info, plugin: p, api: api, cancel: cancel})
	m.mu.Unlock()

	m.log.Info("Plugin enabled.", "name", info.Name, "version", info.Version, "source", symbol)
	return info, nil
}

// Infos returns the plugins currently enabled, in load order.
func (m *Manager[S, C]) Infos() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]Info, len(m.plugins))
	for i, p := range m.plugins {
		infos[i] = p.info
	}
	return infos
}

// Plugin returns an enabled plugin by its case-insensitive name.
func (m *Manager[S, C]) Plugin(name string) (Plugin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plugins {
		if strings.EqualFold(p.info.Name, name) {
			return p.plugin, true
		}
	}
	return nil, false
}

// Disable closes a plugin by its case-insensitive name.
func (m *Manager[S, C]) Disable(name string) (Info, error) {
	m.mu.Lock()
	i := slices.IndexFunc(m.plugins, func(p loaded[S, C]) bool {
		return strings.EqualFold(p.info.Name, name)
	})
	if i < 0 {
		m.mu.Unlock()
		return Info{}, ErrNotFound
	}
	p := m.plugins[i]
	m.plugins = slices.Delete(m.plugins, i, i+1)
	m.mu.Unlock()

	p.cancel()
	m.events.clear(p.info.Name)
	if err := p.plugin.Close(); err != nil {
		return p.info, fmt.Errorf("close plugin: %w", err)
	}
	m.log.Info("Plugin disabled.", "name", p.info.Name)
	return p.info, nil
}

// Shutdown disables every plugin in reverse load order.
func (m *Manager[S, C]) Shutdown() {
	m.mu.RLock()
	names := make([]string, len(m.plugins))
	for i, p := range m.plugins {
		names[i] = p.info.Name
	}
	m.mu.RUnlock()

	for _, name := range slices.Backward(names) {
		if _, err := m.Disable(name); err != nil && !errors.Is(err, ErrNotFound) {
			m.log.Error("Disable plugin.", "name", name, "error", err)
		}
	}
}

// PlayerHandler returns the handler to attach to a joining player. Plugin
// handlers run before base.
func (m *Manager[S, C]) PlayerHandler(base player.Handler) player.Handler {
	return m.events.wrapPlayer(base)
}

// InventoryHandler returns the handler to attach to an inventory. Plugin
// handlers run before base.
func (m *Manager[S, C]) InventoryHandler(base inventory.Handler) inventory.Handler {
	return m.events.wrapInventory(base)
}

// recoverPanic disables the plugin named when a callback of it panicked.
func (m *Manager[S, C]) recoverPanic(name string, reason any) {
	m.events.clear(name)
	m.log.Error("Plugin panic.", "plugin", name, "panic", reason, "stack", string(debug.Stack()))
	go func() {
		if _, err := m.Disable(name); err != nil && !errors.Is(err, ErrNotFound) {
			m.log.Error("Disable plugin after panic.", "plugin", name, "error", err)
			return
		}
		m.log.Warn("Plugin disabled after panic.", "plugin", name)
	}()
}

func (m *Manager[S, C]) dataDirectory(name string) string {
	return m.conf.DataDirectoryOf(name)
}

// canonicalVersion validates a semantic version, with or without the leading
// v, and returns it in canonical form. The empty version is allowed.
func canonicalVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return semver.Canonical(v), nil
}

func baseName(path string) string {
	base := strings.TrimSpace(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if base == "" || base == "." {
		return "plugin"
	}
	return base
}

// sanitize turns a plugin name into a directory name.
func sanitize(name string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '-'
	}, strings.ToLower(strings.TrimSpace(name)))
	if s = strings.Trim(s, "-_."); s == "" {
		return "plugin"
	}
	return s
}

var errSymbolNotFound = errors.New("symbol not found")

func lookupFactory[S any, C any](mod *goplugin.Plugin) (Factory[S, C], string, error) {
	for _, symbol := range factorySymbols {
		sym, err := mod.Lookup(symbol)
		if err != nil {
			continue
		}
		switch fn := sym.(type) {
		case Factory[S, C]:
			return fn, symbol, nil
		case *Factory[S, C]:
			return *fn, symbol, nil
		case func(*API[S, C]) (Plugin, error):
			return fn, symbol, nil
		case *func(*API[S, C]) (Plugin, error):
			return *fn, symbol, nil
		default:
			return nil, symbol, fmt.Errorf("symbol %s has incompatible type %T", symbol, sym)
		}
	}
	return nil, "", errSymbolNotFound
}

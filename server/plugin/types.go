// Package plugin runs server extensions. Extensions are either compiled into
// the server binary and registered statically, or built with
// -buildmode=plugin and loaded from the plugin directory.
package plugin

import (
	"errors"

	"github.com/google/uuid"
)

// Plugin is an enabled server extension.
type Plugin interface {
	// Name returns the display name of the plugin. It must be unique among the
	// plugins of a Manager.
	Name() string
	// Close releases every resource held by the plugin. It is called once, when
	// the plugin is disabled or the server shuts down.
	Close() error
}

// VersionedPlugin may be implemented by plugins to expose a semantic version.
type VersionedPlugin interface {
	Version() string
}

// Factory creates and enables a plugin. The returned Plugin must be ready to
// handle callbacks.
type Factory[S any, C any] func(api *API[S, C]) (Plugin, error)

// Info describes a loaded plugin.
type Info struct {
	Name    string
	Version string
	// Path is the file the plugin was loaded from. It is empty for plugins
	// registered statically.
	Path string
}

// PlayerSummary describes a connected player.
type PlayerSummary struct {
	UUID uuid.UUID
	Name string
}

// Static reports if the plugin was compiled into the server binary.
func (i Info) Static() bool {
	return i.Path == ""
}

var (
	// ErrDisabled is returned when the plugin subsystem is disabled.
	ErrDisabled = errors.New("plugin subsystem disabled")
	// ErrAlreadyLoaded is returned when enabling a plugin file that is already
	// loaded.
	ErrAlreadyLoaded = errors.New("plugin already loaded")
	// ErrNameConflict is returned when another plugin already uses the same
	// case-insensitive name.
	ErrNameConflict = errors.New("plugin name already registered")
	// ErrNotFound is returned when disabling a plugin that is not loaded.
	ErrNotFound = errors.New("plugin not found")
	// ErrInvalidVersion is returned for plugins whose version is not a
	// semantic version.
	ErrInvalidVersion = errors.New("invalid plugin version")
)

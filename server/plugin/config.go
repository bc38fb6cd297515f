package plugin

import "path/filepath"

// Config controls plugin discovery and the location of plugin data.
type Config struct {
	// Enabled specifies if plugins are enabled at all. Statically registered
	// plugins are subject to it as well.
	Enabled bool
	// Directory holds plugin binaries. Relative entries of Files are resolved
	// against it. It defaults to "plugins".
	Directory string
	// DataDirectory is the parent of the per-plugin data directories. It
	// defaults to Directory/data; relative paths are resolved against
	// Directory.
	DataDirectory string
	// Autoload loads every .so file in Directory.
	Autoload bool
	// Files lists additional plugin binaries to load.
	Files []string
}

func (c Config) directory() string {
	if c.Directory == "" {
		return "plugins"
	}
	return c.Directory
}

// DataRoot returns the parent directory of every plugin data directory.
func (c Config) DataRoot() string {
	dir := c.DataDirectory
	switch {
	case dir == "":
		dir = filepath.Join(c.directory(), "data")
	case !filepath.IsAbs(dir):
		dir = filepath.Join(c.directory(), dir)
	}
	return filepath.Clean(dir)
}

// DataDirectoryOf returns the data directory of the plugin with the name
// passed. It is usable before the plugin is enabled.
func (c Config) DataDirectoryOf(name string) string {
	return filepath.Join(c.DataRoot(), sanitize(name))
}

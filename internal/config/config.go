// Package config loads the kernel's optional scadkernel.toml file: library
// search directories and default fragment ($fn/$fa/$fs) settings that seed
// the import resolver and evaluator beneath whatever Options and
// OPENSCADPATH supply explicitly.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Fragments holds the three tessellation defaults a config file may set.
// Zero means "not set by this layer."
type Fragments struct {
	Fn float64 `toml:"fn"`
	Fa float64 `toml:"fa"`
	Fs float64 `toml:"fs"`
}

// Config is the root shape of scadkernel.toml.
type Config struct {
	// LibraryPaths is an ordered list of additional directories the import
	// resolver searches after ./lib/ and ./modules/, before OPENSCADPATH.
	LibraryPaths []string `toml:"library_paths"`

	// FragmentDefaults seeds $fn/$fa/$fs when a script never sets them.
	FragmentDefaults Fragments `toml:"fragment_defaults"`
}

// Load reads and parses the TOML file at path. A missing file is not an
// error: it returns a zero-value Config, since the file is always optional.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	_, err := toml.DecodeFile(path, &cfg)
	return cfg, err
}

// FillDefaults returns a new Fragments identical to f but with any zero
// field replaced by the kernel's built-in defaults ($fa=12, $fs=2; $fn has
// no nonzero built-in default since 0 means "use $fa/$fs instead").
func (f Fragments) FillDefaults() Fragments {
	out := f
	if out.Fa == 0 {
		out.Fa = 12
	}
	if out.Fs == 0 {
		out.Fs = 2
	}
	return out
}

// Merge layers the explicit Options values over cfg's own, per the
// documented precedence: explicit Options wins over config, which wins over
// built-in defaults. libraryPaths are placed ahead of cfg's paths; a zero
// field in override leaves cfg's value in place. OPENSCADPATH is not
// consulted here (the import resolver reads it).
func (cfg Config) Merge(libraryPaths []string, overrideFragments Fragments) Config {
	out := cfg
	out.LibraryPaths = append(append([]string{}, libraryPaths...), cfg.LibraryPaths...)
	if overrideFragments.Fn != 0 {
		out.FragmentDefaults.Fn = overrideFragments.Fn
	}
	if overrideFragments.Fa != 0 {
		out.FragmentDefaults.Fa = overrideFragments.Fa
	}
	if overrideFragments.Fs != 0 {
		out.FragmentDefaults.Fs = overrideFragments.Fs
	}
	return out
}

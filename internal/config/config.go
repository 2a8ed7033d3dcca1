// Package config loads a project's `.alchemy.kdl` configuration: the root
// package name, source roots, entry-point patterns, worker count, and
// exclude globs (§4.O). Defaults and CLI-flag overrides follow the
// teacher's internal/config/config.go Load/LoadWithRoot shape and
// cmd/lci/main.go's loadConfigWithOverrides merge order.
package config

import (
	"fmt"
	"runtime"
)

// Config is the fully-resolved configuration for one compile run.
type Config struct {
	// Package is the root package name entry-point patterns default
	// against when a pattern omits an explicit "Pkg::..." prefix (§6).
	Package string

	// Roots is every source root directory scanned for .ax files (§6).
	Roots []string

	// EntryPatterns is every `[Package::...::]Name[.Method]` pattern
	// passed to FindEntryPoints (§4.K).
	EntryPatterns []string

	// Workers bounds the job scheduler's worker count; 0 means auto-detect
	// (GOMAXPROCS-1), matching jobs.NumWorkers's own floor/ceiling (§4.B).
	Workers int

	// Exclude is every doublestar glob a scanned path is checked against
	// before being registered (§6).
	Exclude []string
}

// Default returns the configuration used when no `.alchemy.kdl` is found:
// a single root at "." and no entry patterns (the caller must supply at
// least one before FindEntryPoints runs, or compile a library with none).
func Default() *Config {
	return &Config{
		Roots:   []string{"."},
		Workers: runtime.NumCPU(),
		Exclude: []string{
			"**/.git/**",
			"**/bin/**",
			"**/obj/**",
		},
	}
}

// Validate checks that cfg is usable: at least one root, a non-empty
// package name, and a positive worker count (falling back to the default instead of erroring, since §4.B
// already clamps an out-of-range value).
func (cfg *Config) Validate() error {
	if len(cfg.Roots) == 0 {
		return fmt.Errorf("config: at least one root is required")
	}
	if cfg.Package == "" {
		return fmt.Errorf("config: package name is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return nil
}

// Overrides carries the CLI flag values cmd/alchemycheck's `check`/`watch`
// subcommands accept, merged over a loaded Config in the same order as the
// teacher's loadConfigWithOverrides: entry patterns and excludes append,
// root and workers replace outright when supplied.
type Overrides struct {
	Root          string
	EntryPatterns []string
	Exclude       []string
	Workers       int
}

// Apply merges o into cfg in place.
func (cfg *Config) Apply(o Overrides) {
	if o.Root != "" {
		cfg.Roots = []string{o.Root}
	}
	if len(o.EntryPatterns) > 0 {
		cfg.EntryPatterns = append(cfg.EntryPatterns, o.EntryPatterns...)
	}
	if len(o.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, o.Exclude...)
	}
	if o.Workers > 0 {
		cfg.Workers = o.Workers
	}
}

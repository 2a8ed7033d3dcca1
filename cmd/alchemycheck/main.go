// Command alchemycheck is the CLI surface over the phase pipeline (§4.P):
// `check` runs one compile pass and prints diagnostics, `watch` reruns it
// on debounced filesystem changes (§4.N), and `stats` reports file,
// entry-point, touched-type and diagnostic counts. Grounded on the teacher's cmd/lci/main.go urfave/cli
// app shape (top-level flags merged into config via loadConfigWithOverrides,
// one subcommand per mode), scoped down to this module's three modes.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/config"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/debug"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/diagnostics"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/genericcache"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/jobs"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/pipeline"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/registry"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/resolver"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/watch"
)

// Version is overridden at build time via -ldflags, matching the teacher's
// own convention for cmd/lci.
var Version = "dev"

func main() {
	app := &cli.App{
		Name:    "alchemycheck",
		Usage:   "Semantic checker for Alchemy source packages",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Config file directory", Value: "."},
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Override the single source root"},
			&cli.StringSliceFlag{Name: "entry", Aliases: []string{"e"}, Usage: "Additional entry-point pattern (repeatable)"},
			&cli.StringSliceFlag{Name: "exclude", Usage: "Additional exclude glob (repeatable)"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Override worker count"},
			&cli.StringFlag{Name: "debug-log", Usage: "Write debug logging to this file instead of discarding it"},
		},
		Commands: []*cli.Command{
			checkCommand(),
			watchCommand(),
			statsCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "alchemycheck:", err)
		os.Exit(1)
	}
}

// loadConfig mirrors the teacher's loadConfigWithOverrides merge order:
// load from disk, then apply CLI-flag overrides on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	cfg.Apply(config.Overrides{
		Root:          c.String("root"),
		EntryPatterns: c.StringSlice("entry"),
		Exclude:       c.StringSlice("exclude"),
		Workers:       c.Int("workers"),
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logPath := c.String("debug-log"); logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			return nil, fmt.Errorf("opening debug log: %w", err)
		}
		debug.SetDebugOutput(f)
	}
	return cfg, nil
}

// runState is everything one compile run needs wired together; held across
// `watch` reruns so the registry (and therefore dependency bitmaps and the
// generic-type cache) persists between passes instead of starting cold.
type runState struct {
	cfg       *config.Config
	pool      *jobs.Pool
	reg       *registry.Registry
	resolveMp *resolver.Map
	generics  *genericcache.Cache
}

func newRunState(cfg *config.Config) *runState {
	return &runState{
		cfg:       cfg,
		pool:      jobs.NewPool(jobs.NumWorkers(cfg.Workers)),
		reg:       registry.NewRegistry(cfg.Package),
		resolveMp: resolver.NewMap(),
		generics:  genericcache.New(),
	}
}

// compileOnce runs §4.G's enumeration/reconcile step followed by the full
// phase pipeline (§2), returning the populated diagnostics sink.
func (rs *runState) compileOnce() (*diagnostics.Sink, *pipeline.Result, error) {
	packageOf := make(map[string]string, len(rs.cfg.Roots))
	for _, root := range rs.cfg.Roots {
		packageOf[root] = rs.cfg.Package
	}

	scanned, err := registry.ScanRoots(rs.cfg.Roots, packageOf, rs.cfg.Exclude)
	if err != nil {
		return nil, nil, fmt.Errorf("scanning roots: %w", err)
	}
	rs.reg.Reconcile(scanned)

	changed := rs.reg.PropagateChanges()
	rs.generics.Invalidate(changed)

	sink := diagnostics.NewSink()
	// No concrete lexer/parser ships with this module (§1's explicit
	// out-of-scope boundary); passing a nil ParseFunc leaves every
	// FileInfo.Tree nil and every phase downstream of GatherTypes degrades
	// to "nothing declared here" for that file rather than crashing, so the
	// pipeline's wiring can be exercised end-to-end (scanning, scheduling,
	// diagnostics, entry-point matching against whatever a real parser
	// would have populated) without this repository inventing a grammar.
	var parse pipeline.ParseFunc
	result, err := pipeline.Compile(rs.pool, rs.reg, parse, rs.resolveMp, rs.generics, rs.cfg.Package, rs.cfg.EntryPatterns, nil, sink)
	if err != nil {
		return nil, nil, fmt.Errorf("compile: %w", err)
	}
	return sink, result, nil
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Run one compile pass and print diagnostics",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			rs := newRunState(cfg)
			sink, _, err := rs.compileOnce()
			if err != nil {
				return err
			}
			return printDiagnostics(sink)
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Recompile on filesystem changes (§4.N)",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			rs := newRunState(cfg)

			run := func() {
				sink, _, err := rs.compileOnce()
				if err != nil {
					fmt.Fprintln(os.Stderr, "alchemycheck: recompile failed:", err)
					return
				}
				_ = printDiagnostics(sink)
			}
			run()

			w, err := watch.New(cfg.Roots, watch.DefaultDebounce, run)
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			w.Start()
			defer w.Stop()

			fmt.Println("alchemycheck: watching for changes, press Ctrl+C to stop")
			select {} // the CLI process is the run loop; Ctrl+C exits the program
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Run one compile pass and print file/entry-point/type/diagnostic counts",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			rs := newRunState(cfg)
			sink, result, err := rs.compileOnce()
			if err != nil {
				return err
			}
			fmt.Printf("files scanned:    %d\n", len(result.Files))
			fmt.Printf("entry points:     %d\n", len(result.EntryPoints))
			fmt.Printf("touched types:    %d\n", len(result.CodeGen.TouchedTypes()))
			fmt.Printf("diagnostics:      %d\n", len(sink.All()))
			return nil
		},
	}
}

// printDiagnostics prints one diagnostic per line and returns a non-nil
// error (so the process exits non-zero) when any were reported, matching
// §4.P's "non-zero exit on any error diagnostic."
func printDiagnostics(sink *diagnostics.Sink) error {
	all := sink.All()
	for _, d := range all {
		fmt.Println(d.String())
	}
	if len(all) > 0 {
		return fmt.Errorf("%d diagnostic(s) reported", len(all))
	}
	fmt.Println("alchemycheck: no errors")
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// FileName is the configuration file every project root is checked for.
const FileName = ".alchemy.kdl"

// Load reads FileName from dir and merges it over Default(). A missing file
// is not an error: Default() is returned unchanged except for Roots being
// resolved relative to dir.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, FileName)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.Roots = []string{dir}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := parseKDL(string(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	resolved := make([]string, len(cfg.Roots))
	for i, r := range cfg.Roots {
		if filepath.IsAbs(r) {
			resolved[i] = r
		} else {
			resolved[i] = filepath.Clean(filepath.Join(dir, r))
		}
	}
	cfg.Roots = resolved

	return cfg, nil
}

// parseKDL decodes the §4.O document shape into cfg in place:
//
//	package "TestApp"
//	roots { root "./src" }
//	entrypoints { pattern "Program" }
//	workers 8
//	exclude "**/vendor/**" "**/*.gen.ax"
func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return err
	}

	var roots, entryPatterns []string
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "package":
			if s, ok := firstStringArg(n); ok {
				cfg.Package = s
			}
		case "roots":
			for _, cn := range n.Children {
				if nodeName(cn) == "root" {
					if s, ok := firstStringArg(cn); ok {
						roots = append(roots, s)
					}
				}
			}
		case "entrypoints":
			for _, cn := range n.Children {
				if nodeName(cn) == "pattern" {
					if s, ok := firstStringArg(cn); ok {
						entryPatterns = append(entryPatterns, s)
					}
				}
			}
		case "workers":
			if v, ok := firstIntArg(n); ok {
				cfg.Workers = v
			}
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}

	if len(roots) > 0 {
		cfg.Roots = roots
	}
	if len(entryPatterns) > 0 {
		cfg.EntryPatterns = entryPatterns
	}

	return nil
}

// nodeName returns n's node-name text, or "" for a nil node.
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		i, err := strconv.Atoi(v)
		return i, err == nil
	default:
		return 0, false
	}
}

// collectStringArgs returns every string argument on n, the shape `exclude
// "a" "b"` uses.
func collectStringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

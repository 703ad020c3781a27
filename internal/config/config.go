// Package config resolves rfold configuration from the global and workspace
// YAML files.
//
// File format:
//
//	showHidden: false
//	locale: en
//	hide:
//	  .ts: [.js, .js.map]
//	  .scss: .css, .css.map
//
// Hide rules keep the order they are written in. The workspace file overrides
// the global file per trigger suffix; mapping a trigger to an empty list in the
// workspace file removes the global rule.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kk-code-lab/rfold/internal/rules"
	"gopkg.in/yaml.v3"
)

const (
	// WorkspaceFileName is looked up in the browsed root directory.
	WorkspaceFileName = ".rfold.yaml"
	appDirName        = "rfold"
	globalFileName    = "config.yaml"
)

// ErrInvalidConfig wraps configuration files that cannot be decoded.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the resolved configuration.
type Config struct {
	ShowHidden bool
	Locale     string
	Hide       []rules.Rule
}

// Paths lists the files to resolve, lowest precedence first. Empty entries
// are skipped.
type Paths struct {
	Global    string
	Workspace string
}

// File is one decoded configuration file. Nil pointers mean "not set".
type File struct {
	Path       string
	ShowHidden *bool
	Locale     *string
	Hide       []rules.Rule
}

type rawFile struct {
	ShowHidden *bool     `yaml:"showHidden"`
	Locale     *string   `yaml:"locale"`
	Hide       yaml.Node `yaml:"hide"`
}

// DefaultPaths returns the global config path under the user config directory
// and the workspace file inside root.
func DefaultPaths(root string) Paths {
	var p Paths
	if dir, err := os.UserConfigDir(); err == nil {
		p.Global = filepath.Join(dir, appDirName, globalFileName)
	}
	if root != "" {
		p.Workspace = filepath.Join(root, WorkspaceFileName)
	}
	return p
}

// Load reads and merges the configured files. Missing files are skipped.
func Load(paths Paths) (Config, error) {
	var cfg Config
	for _, path := range []string{paths.Global, paths.Workspace} {
		if path == "" {
			continue
		}
		f, err := LoadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(f)
	}
	return cfg, nil
}

// LoadFile reads one configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes one configuration document.
func Parse(data []byte) (*File, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	hide, err := decodeHide(&raw.Hide)
	if err != nil {
		return nil, err
	}
	return &File{ShowHidden: raw.ShowHidden, Locale: raw.Locale, Hide: hide}, nil
}

// decodeHide walks the mapping node directly; decoding into a Go map would
// lose the order rules are written in.
func decodeHide(node *yaml.Node) ([]rules.Rule, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: hide must be a mapping of trigger suffix to hidden suffixes", ErrInvalidConfig, node.Line)
	}

	out := make([]rules.Rule, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d: trigger suffix must be a string", ErrInvalidConfig, key.Line)
		}

		var hidden []string
		switch value.Kind {
		case yaml.SequenceNode:
			for _, item := range value.Content {
				if item.Kind != yaml.ScalarNode {
					return nil, fmt.Errorf("%w: line %d: hidden suffix must be a string", ErrInvalidConfig, item.Line)
				}
				hidden = append(hidden, item.Value)
			}
		case yaml.ScalarNode:
			if value.Tag != "!!null" {
				hidden = splitList(value.Value)
			}
		default:
			return nil, fmt.Errorf("%w: line %d: hidden suffixes for %q must be a list or a comma separated string", ErrInvalidConfig, value.Line, key.Value)
		}
		out = append(out, rules.Rule{Trigger: key.Value, Hidden: hidden})
	}
	return out, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Merge overlays f on c. Scalars set in f win. Rules from f replace rules of c
// with the same trigger in place, and an empty override removes the rule; new
// non-empty triggers are appended in f's order.
func (c Config) Merge(f *File) Config {
	if f == nil {
		return c
	}
	out := Config{ShowHidden: c.ShowHidden, Locale: c.Locale}
	if f.ShowHidden != nil {
		out.ShowHidden = *f.ShowHidden
	}
	if f.Locale != nil {
		out.Locale = *f.Locale
	}

	override := make(map[string]rules.Rule, len(f.Hide))
	for _, r := range f.Hide {
		override[r.Trigger] = r
	}
	used := make(map[string]bool, len(f.Hide))
	for _, r := range c.Hide {
		if o, ok := override[r.Trigger]; ok {
			used[r.Trigger] = true
			if len(o.Hidden) > 0 {
				out.Hide = append(out.Hide, o)
			}
			continue
		}
		out.Hide = append(out.Hide, r)
	}
	for _, r := range f.Hide {
		// An empty override with nothing to replace is a no-op.
		if !used[r.Trigger] && len(r.Hidden) > 0 {
			out.Hide = append(out.Hide, r)
		}
	}
	return out
}

// RuleSet validates the hide rules into a snapshot. Invalid rules are
// reported through the returned error while the valid ones are kept.
func (c Config) RuleSet() (*rules.Set, error) {
	return rules.New(c.Hide...)
}

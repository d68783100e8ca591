package style

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmylchreest/creak/internal/config"
)

// Source describes where a style was loaded from.
type Source string

const (
	SourceUser    Source = "user"
	SourceBundled Source = "bundled"
	SourceDefault Source = "default"
)

// Style is a resolved style.
type Style struct {
	Name   string
	Source Source
	Path   string // Empty unless loaded from disk
	Config *config.Config
}

// Load resolves name to a configuration. A missing style falls back to the
// built-in defaults with a warning; a style that exists but fails to parse
// or validate is an error.
func Load(name string, logger *slog.Logger) (*Style, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if path, ok := config.FindStyleFile(config.StylePath(name)); ok {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded user style", "name", name, "path", path)
		return &Style{Name: styleName(name, path), Source: SourceUser, Path: path, Config: cfg}, nil
	}

	bundled := name
	if bundled == "" {
		bundled = DefaultStyleName
	}
	if !strings.Contains(name, "/") {
		if data, ok := GetEmbeddedStyle(bundled); ok {
			cfg, err := decodeBundled(bundled, data)
			if err != nil {
				return nil, err
			}
			logger.Debug("loaded bundled style", "name", bundled)
			return &Style{Name: bundled, Source: SourceBundled, Config: cfg}, nil
		}
	}

	logger.Warn("style not found, using defaults", "style", name)
	return &Style{Name: DefaultStyleName, Source: SourceDefault, Config: config.DefaultConfig()}, nil
}

func decodeBundled(name string, data []byte) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := config.Decode(cfg, data, config.FormatTOML); err != nil {
		return nil, fmt.Errorf("bundled style %s: %w", name, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bundled style %s: %w", name, err)
	}
	return cfg, nil
}

func styleName(name, path string) string {
	if name != "" && !strings.Contains(name, "/") {
		return name
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Info describes an available style.
type Info struct {
	Name   string `json:"name" yaml:"name"`
	Source Source `json:"source" yaml:"source"`
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
}

// List returns the bundled styles followed by the user styles found in the
// config directory, each group sorted by name. A user style that shadows a
// bundled one is listed once, as a user style.
func List() ([]Info, error) {
	user, err := listUser(config.ConfigDir())
	if err != nil {
		return nil, err
	}

	shadowed := make(map[string]bool, len(user))
	for _, info := range user {
		shadowed[info.Name] = true
	}

	var styles []Info
	bundled := ListEmbeddedStyles()
	sort.Strings(bundled)
	for _, name := range bundled {
		if !shadowed[name] {
			styles = append(styles, Info{Name: name, Source: SourceBundled})
		}
	}
	return append(styles, user...), nil
}

func listUser(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read style directory: %w", err)
	}

	var styles []Info
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		switch {
		case ext == ".toml" || ext == ".yaml" || ext == ".yml":
			name = strings.TrimSuffix(name, ext)
		case ext == "" && name == "config":
		default:
			continue
		}
		styles = append(styles, Info{Name: name, Source: SourceUser, Path: filepath.Join(dir, entry.Name())})
	}
	sort.Slice(styles, func(i, j int) bool { return styles[i].Name < styles[j].Name })
	return styles, nil
}

package style

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
)

// EmbeddedStyles contains all bundled style files.
//
//go:embed styles/*.toml
var EmbeddedStyles embed.FS

// DefaultStyleName is the name of the built-in default style.
const DefaultStyleName = "default"

// BundledStyles lists all embedded style names.
var BundledStyles = []string{"default", "minimal", "catppuccin"}

// GetEmbeddedStyle retrieves a bundled style by name.
func GetEmbeddedStyle(name string) ([]byte, bool) {
	data, err := EmbeddedStyles.ReadFile("styles/" + name + ".toml")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ListEmbeddedStyles returns names of all embedded styles.
func ListEmbeddedStyles() []string {
	entries, err := fs.ReadDir(EmbeddedStyles, "styles")
	if err != nil {
		return BundledStyles
	}

	var styles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ext := filepath.Ext(name); ext == ".toml" {
			styles = append(styles, strings.TrimSuffix(name, ext))
		}
	}
	return styles
}

// IsEmbeddedStyle checks if a style name is bundled.
func IsEmbeddedStyle(name string) bool {
	_, found := GetEmbeddedStyle(name)
	return found
}

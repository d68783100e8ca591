// Package style resolves the named style a notification is drawn with.
//
// A style is a config document (TOML or YAML). Resolution order:
//  1. A path, when the name contains '/'
//  2. User styles in the config directory (~/.config/creak/)
//  3. Bundled styles embedded in the binary
//  4. Built-in defaults
//
// User files shadow bundled styles with the same name.
package style

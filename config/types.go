// Package config loads the tool's own configuration from modforge.yml (or
// modforge.toml), found by walking up from the working directory, with an
// optional global layer under ~/.config/modforge/.
package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Config is the parsed modforge configuration.
type Config struct {
	// Version is the config format version string.
	Version string `yaml:"version" json:"version,omitempty"`

	// Editor holds settings for the document editor core.
	Editor EditorConfig `yaml:"editor" json:"editor,omitempty"`

	// Extensions holds top-level sections this package does not know about.
	// Tools decode their own section with UnmarshalExtension.
	Extensions map[string]interface{} `yaml:"-" json:"-"`
}

// EditorConfig holds settings for the document editor core.
type EditorConfig struct {
	// BackupOnSave keeps a .bak copy of the previous file content when a
	// document is persisted over an existing file.
	BackupOnSave bool `yaml:"backup_on_save" json:"backup_on_save,omitempty"`

	// WatchDebounceMs is how long rapid on-disk changes to an open document
	// are coalesced before the document is reloaded.
	WatchDebounceMs int `yaml:"watch_debounce_ms" json:"watch_debounce_ms,omitempty"`
}

const defaultWatchDebounceMs = 500

func (c *Config) applyDefaults() {
	if c.Editor.WatchDebounceMs <= 0 {
		c.Editor.WatchDebounceMs = defaultWatchDebounceMs
	}
}

// UnmarshalExtension decodes a specific extension's configuration from the
// loaded modforge.yml into the provided target struct. The target must be a
// pointer. This provides a type-safe way for tools to access their custom
// configuration sections.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		// The target struct will simply remain zero-valued.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}

package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/modforge/core/errors"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Config file names searched for, in order of preference.
var configFileNames = []string{"modforge.yml", "modforge.yaml", "modforge.toml"}

// Load reads and parses a single configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	raw, err := parseRaw(data, path)
	if err != nil {
		return nil, err
	}
	return fromRaw(raw)
}

// LoadDefault finds and loads the configuration starting from the current
// directory, merging the global layer (~/.config/modforge/modforge.yml)
// under the project layer.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}
	return LoadFrom(cwd)
}

// LoadFrom loads configuration with global/project merging starting from
// the given directory.
func LoadFrom(startDir string) (*Config, error) {
	projectPath, err := FindConfigFile(startDir)
	if err != nil {
		return nil, err
	}

	merged := map[string]interface{}{}

	// 1. Global config is an optional base layer
	globalPath := globalConfigPath()
	if globalPath != "" {
		if data, err := os.ReadFile(globalPath); err == nil {
			if raw, err := parseRaw(data, globalPath); err == nil {
				merged = raw
			}
		}
	}

	// 2. Project config overrides the global layer
	data, err := os.ReadFile(projectPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read project config").
			WithDetail("path", projectPath)
	}
	raw, err := parseRaw(data, projectPath)
	if err != nil {
		return nil, err
	}
	merged = mergeMaps(merged, raw)

	return fromRaw(merged)
}

// FindConfigFile walks up from startDir looking for a modforge config file.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.ConfigNotFound(filepath.Join(startDir, configFileNames[0]))
		}
		dir = parent
	}
}

// parseRaw decodes YAML or TOML (chosen by file extension) into a generic
// map, with ${ENV} references expanded first.
func parseRaw(data []byte, path string) (map[string]interface{}, error) {
	expanded := expandEnvVars(string(data))

	raw := map[string]interface{}{}
	var err error
	if strings.HasSuffix(path, ".toml") {
		err = toml.Unmarshal([]byte(expanded), &raw)
	} else {
		err = yaml.Unmarshal([]byte(expanded), &raw)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config file").
			WithDetail("path", path)
	}
	return raw, nil
}

// fromRaw decodes the known fields into Config and collects any remaining
// top-level sections as extensions.
func fromRaw(raw map[string]interface{}) (*Config, error) {
	cfg := &Config{}
	md := mapstructure.Metadata{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "yaml",
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create config decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode config")
	}

	cfg.Extensions = make(map[string]interface{})
	for _, key := range md.Unused {
		// Nested unused keys are reported dotted; only whole top-level
		// sections are extensions.
		if !strings.Contains(key, ".") {
			cfg.Extensions[key] = raw[key]
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// mergeMaps deep-merges overlay over base. Maps merge recursively; any
// other value in the overlay wins.
func mergeMaps(base, overlay map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if baseMap, ok := out[k].(map[string]interface{}); ok {
			if overlayMap, ok := v.(map[string]interface{}); ok {
				out[k] = mergeMaps(baseMap, overlayMap)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		name := envVarRegex.FindStringSubmatch(match)[1]
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return match
	})
}

func globalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	for _, name := range configFileNames {
		candidate := filepath.Join(configHome, "modforge", name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Package config provides configuration types and utilities for the
// orchestration core. This file implements YAML decoding (with
// environment-variable expansion) and the optional TOML project-local
// override layer.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// loadConfig reads and decodes a YAML config file at path into out.
func loadConfig(path string, out *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return decodeYAML(raw, out)
}

// loadConfigFromString decodes a YAML config document into out.
func loadConfigFromString(content string, out *Config) error {
	return decodeYAML([]byte(content), out)
}

// decodeYAML unmarshals raw YAML into a generic tree, expands
// ${VAR}/${VAR:-default}/$VAR references against the process environment,
// then re-marshals and decodes into the typed Config. The round-trip
// through a generic tree is what lets expansion reach every string field
// without per-field plumbing.
func decodeYAML(raw []byte, out *Config) error {
	var data map[string]interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return err
	}
	expanded := ExpandEnvVarsInData(data)
	remarshaled, err := yaml.Marshal(expanded)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(remarshaled, out)
}

// overridePathFor returns the project-local TOML override path that sits
// alongside a YAML config file.
func overridePathFor(yamlPath string) string {
	return filepath.Join(filepath.Dir(yamlPath), ".agentcore.toml")
}

// applyTOMLOverride layers an optional ".agentcore.toml" on top of a
// loaded Config. A missing override file is not an error; fields present
// in the file take precedence over the YAML-loaded values they name.
func applyTOMLOverride(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	_, err := toml.DecodeFile(path, cfg)
	return err
}

// Package config handles configuration for evtflat.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults match the original converter's fixed file names.
const (
	DefaultTextInput  = "event_logs.txt"
	DefaultTextOutput = "parsed_events.csv"
	DefaultXMLOutput  = "parsed_event.csv"
	DefaultLogLevel   = "info"
)

// Config holds all evtflat configuration.
type Config struct {
	TextInput  string `yaml:"text_input"`
	TextOutput string `yaml:"text_output"`
	XMLOutput  string `yaml:"xml_output"`
	LogLevel   string `yaml:"log_level"`
}

// Load builds the effective configuration. Precedence, lowest to
// highest: built-in defaults, the optional YAML file at path, then
// EVTFLAT_* environment variables. Flags are applied by the caller on
// top of the result.
func Load(path string) (*Config, error) {
	cfg := &Config{
		TextInput:  DefaultTextInput,
		TextOutput: DefaultTextOutput,
		XMLOutput:  DefaultXMLOutput,
		LogLevel:   DefaultLogLevel,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	overrideFromEnv(&cfg.TextInput, "EVTFLAT_TEXT_INPUT")
	overrideFromEnv(&cfg.TextOutput, "EVTFLAT_TEXT_OUTPUT")
	overrideFromEnv(&cfg.XMLOutput, "EVTFLAT_XML_OUTPUT")
	overrideFromEnv(&cfg.LogLevel, "EVTFLAT_LOG_LEVEL")

	return cfg, nil
}

func overrideFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

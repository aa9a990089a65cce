package recast

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnolang/recast/internal/rewrite"
	tt "github.com/gnolang/recast/internal/types"
)

// DefaultConfigFile is the configuration file written by "recast init".
const DefaultConfigFile = ".recast.yaml"

// Config represents the overall configuration of a run.
type Config struct {
	Name string `yaml:"name"`
	// Properties is the path of the eliminated-property table. A relative
	// path is resolved against the directory of the config file.
	Properties string                   `yaml:"properties,omitempty"`
	Settings   rewrite.Settings         `yaml:"settings"`
	Rules      map[string]tt.ConfigRule `yaml:"rules"`
	Stats      StatsConfig              `yaml:"stats"`
}

// StatsConfig tunes the statistics collectors.
type StatsConfig struct {
	// FreeText counts string constants containing spaces.
	FreeText bool `yaml:"free_text"`
}

func DefaultConfig() Config {
	return Config{
		Name:     "recast",
		Settings: rewrite.DefaultSettings(),
		Rules:    map[string]tt.ConfigRule{},
	}
}

// LoadConfig reads the configuration file at path on top of the defaults.
// An empty path yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return config, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := config.validate(); err != nil {
		return config, fmt.Errorf("config %s: %w", path, err)
	}
	if config.Properties != "" && !filepath.IsAbs(config.Properties) {
		config.Properties = filepath.Join(filepath.Dir(path), config.Properties)
	}
	return config, nil
}

func (c Config) validate() error {
	groups := rewrite.Groups()
	for name := range c.Rules {
		if !slices.Contains(groups, name) {
			return fmt.Errorf("unknown rule group %q (known: %s)", name, strings.Join(groups, ", "))
		}
	}
	return nil
}

// WriteConfig writes c as YAML to path, replacing any existing file.
func WriteConfig(path string, c Config) error {
	d, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

package hub

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

// Config is hub/config.yml
type Config struct {
	Languages []string `yaml:"languages"`
}

// Language is a hub language: its BCP 47 tag and English display name
type Language struct {
	Tag  string
	Name string
}

// LoadConfig reads config.yml from the hub directory
func LoadConfig(hubDir string) (*Config, error) {
	path := filepath.Join(hubDir, "config.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hub config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing hub config %s: %w", path, err)
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"en"}
	}
	return cfg, nil
}

// ResolveLanguages parses the configured tags in order, dropping duplicates
func (c *Config) ResolveLanguages() ([]Language, error) {
	namer := display.English.Tags()
	seen := make(map[string]bool)
	var langs []Language
	for _, raw := range c.Languages {
		tag, err := language.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("language %q: %w", raw, err)
		}
		key := tag.String()
		if seen[key] {
			continue
		}
		seen[key] = true

		name := namer.Name(tag)
		if name == "" {
			name = key
		}
		langs = append(langs, Language{Tag: key, Name: name})
	}
	return langs, nil
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/shelf/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Always set targetPath when the directory exists so SaveConfig
	// can create or overwrite the file.
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns all supported configuration key names in TOML
// section order.
func ValidConfigKeys() []string {
	result := make([]string, 0, len(configKeys))
	for _, k := range orderedConfigKeys {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}
	return result
}

// IsValidConfigKey returns true if the given key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// LoadConfig loads the configuration from config.toml in the target .shelf/ directory.
// If the file does not exist, returns NewDefaultConfig() so callers always receive
// a fully-populated Config. Fields explicitly set in the file override the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from NewDefaultConfig().
func applyDefaults(cfg *Config) {
	d := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = d.Version
	}

	setIfEmpty(&cfg.API.Listen, d.API.Listen)
	setIfEmpty(&cfg.API.CORSOrigins, d.API.CORSOrigins)
	setIfEmpty(&cfg.Client.APITarget, d.Client.APITarget)

	setIfEmpty(&cfg.VectorStore.Provider, d.VectorStore.Provider)
	setIfEmpty(&cfg.VectorStore.Collection, d.VectorStore.Collection)

	setIfEmpty(&cfg.Embedding.Provider, d.Embedding.Provider)
	setIfEmpty(&cfg.Embedding.Model, d.Embedding.Model)
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = d.Embedding.Dimensions
	}

	setIfEmpty(&cfg.LLM.Provider, d.LLM.Provider)
	setIfEmpty(&cfg.Image.Provider, d.Image.Provider)
	setIfEmpty(&cfg.Image.Model, d.Image.Model)

	if cfg.Chat.TopK == 0 {
		cfg.Chat.TopK = d.Chat.TopK
	}
	if cfg.Chat.Threshold == 0 {
		cfg.Chat.Threshold = d.Chat.Threshold
	}
	if cfg.Chat.FallbackTopK == 0 {
		cfg.Chat.FallbackTopK = d.Chat.FallbackTopK
	}
	if cfg.Chat.FallbackThreshold == 0 {
		cfg.Chat.FallbackThreshold = d.Chat.FallbackThreshold
	}

	setIfEmpty(&cfg.Cache.Target, d.Cache.Target)
	setIfEmpty(&cfg.Cache.TTL, d.Cache.TTL)

	setIfEmpty(&cfg.Events.Provider, d.Events.Provider)
	setIfEmpty(&cfg.Events.Brokers, d.Events.Brokers)
	setIfEmpty(&cfg.Events.Topic, d.Events.Topic)

	if cfg.Indexer.Workers == 0 {
		cfg.Indexer.Workers = d.Indexer.Workers
	}
}

func setIfEmpty(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// SaveConfig persists the configuration to config.toml in the target .shelf/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given value, and saves it.
// Returns an error if the key is not a valid config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation of the given key.
// Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// PresetConfig returns a default Config with every AI provider pointed at the
// named preset. Supported presets: "openai", "gemini", "ollama", "anthropic".
// Anthropic has no embedding or image API, so that preset keeps the
// local ollama embedder and the openai image generator.
func PresetConfig(name string) (*Config, error) {
	cfg := NewDefaultConfig()

	switch strings.ToLower(name) {
	case "openai":
		cfg.LLM.Provider = "openai"
		cfg.Embedding = EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		}
		cfg.Image = ImageConfig{Provider: "openai", Model: "dall-e-3"}

	case "gemini":
		cfg.LLM.Provider = "gemini"
		cfg.Embedding = EmbeddingConfig{
			Provider:   "gemini",
			Model:      "gemini-embedding-001",
			Dimensions: 768,
		}
		cfg.Image = ImageConfig{Provider: "gemini", Model: "imagen-4.0-generate-001"}

	case "anthropic":
		cfg.LLM.Provider = "anthropic"

	case "ollama":
		cfg.LLM.Provider = "ollama"
		cfg.Embedding = EmbeddingConfig{
			Provider:   "ollama",
			Model:      "nomic-embed-text",
			Dimensions: 768,
		}

	default:
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}

	return cfg, nil
}

// ValidPresetNames returns the list of recognized preset names.
func ValidPresetNames() []string {
	return []string{"openai", "gemini", "anthropic", "ollama"}
}

// ParseConfigTOML parses raw TOML bytes into a Config.
// Returns an error if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}

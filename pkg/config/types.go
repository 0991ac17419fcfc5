package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent shelf configuration stored as config.toml
// in the .shelf/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	LLM         LLMConfig         `toml:"llm"`
	Image       ImageConfig       `toml:"image"`
	Chat        ChatConfig        `toml:"chat"`
	Cache       CacheConfig       `toml:"cache"`
	Events      EventsConfig      `toml:"events"`
	Indexer     IndexerConfig     `toml:"indexer"`
	Prompts     PromptsConfig     `toml:"prompts"`
}

// StorageConfig selects the relational store. PostgresDSN wins over
// SQLitePath; with neither set the catalog lives in memory.
type StorageConfig struct {
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen      string `toml:"listen,omitempty"`
	CORSOrigins string `toml:"cors_origins,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running API
// server (shelf ask, shelf chat). Values are full URLs.
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Collection string `toml:"collection,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// LLMConfig holds the completion provider used by the chatbot and the
// description generator.
type LLMConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// ImageConfig holds the image generation provider settings.
type ImageConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Model    string `toml:"model,omitempty"`
}

// ChatConfig holds the retrieval parameters of the chatbot.
type ChatConfig struct {
	TopK              uint    `toml:"top_k,omitempty"`
	Threshold         float64 `toml:"similarity_threshold,omitempty"`
	FallbackTopK      uint    `toml:"fallback_top_k,omitempty"`
	FallbackThreshold float64 `toml:"fallback_similarity_threshold,omitempty"`
}

// CacheConfig holds the chat answer cache settings. An empty provider
// disables caching.
type CacheConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	TTL      string `toml:"ttl,omitempty"`
}

// EventsConfig holds the order event stream settings.
type EventsConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// IndexerConfig controls how vector documents are written.
type IndexerConfig struct {
	Async   bool `toml:"async,omitempty"`
	Workers uint `toml:"workers,omitempty"`
}

// PromptsConfig points at a directory of prompt template overrides.
type PromptsConfig struct {
	Dir string `toml:"dir,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func uintKey(name string, field func(c *Config) *uint) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func floatKey(name string, field func(c *Config) *float64) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatFloat(*field(c), 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			if f < 0 || f > 1 {
				return fmt.Errorf("invalid value for %s: %v is outside [0, 1]", name, f)
			}
			*field(c) = f
			return nil
		},
	}
}

func boolKey(name string, field func(c *Config) *bool) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.sqlite_path":  stringKey(func(c *Config) *string { return &c.Storage.SQLitePath }),
	"storage.postgres_dsn": stringKey(func(c *Config) *string { return &c.Storage.PostgresDSN }),

	"api.listen":       stringKey(func(c *Config) *string { return &c.API.Listen }),
	"api.cors_origins": stringKey(func(c *Config) *string { return &c.API.CORSOrigins }),

	"client.api_target": stringKey(func(c *Config) *string { return &c.Client.APITarget }),

	"vector_store.provider":   stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":     stringKey(func(c *Config) *string { return &c.VectorStore.Target }),
	"vector_store.collection": stringKey(func(c *Config) *string { return &c.VectorStore.Collection }),

	"embedding.provider":   stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":     stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":      stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions": uintKey("embedding.dimensions", func(c *Config) *uint { return &c.Embedding.Dimensions }),

	"llm.provider": stringKey(func(c *Config) *string { return &c.LLM.Provider }),
	"llm.target":   stringKey(func(c *Config) *string { return &c.LLM.Target }),
	"llm.model":    stringKey(func(c *Config) *string { return &c.LLM.Model }),

	"image.provider": stringKey(func(c *Config) *string { return &c.Image.Provider }),
	"image.target":   stringKey(func(c *Config) *string { return &c.Image.Target }),
	"image.model":    stringKey(func(c *Config) *string { return &c.Image.Model }),

	"chat.top_k":                         uintKey("chat.top_k", func(c *Config) *uint { return &c.Chat.TopK }),
	"chat.similarity_threshold":          floatKey("chat.similarity_threshold", func(c *Config) *float64 { return &c.Chat.Threshold }),
	"chat.fallback_top_k":                uintKey("chat.fallback_top_k", func(c *Config) *uint { return &c.Chat.FallbackTopK }),
	"chat.fallback_similarity_threshold": floatKey("chat.fallback_similarity_threshold", func(c *Config) *float64 { return &c.Chat.FallbackThreshold }),

	"cache.provider": stringKey(func(c *Config) *string { return &c.Cache.Provider }),
	"cache.target":   stringKey(func(c *Config) *string { return &c.Cache.Target }),
	"cache.ttl":      stringKey(func(c *Config) *string { return &c.Cache.TTL }),

	"events.provider": stringKey(func(c *Config) *string { return &c.Events.Provider }),
	"events.brokers":  stringKey(func(c *Config) *string { return &c.Events.Brokers }),
	"events.topic":    stringKey(func(c *Config) *string { return &c.Events.Topic }),

	"indexer.async":   boolKey("indexer.async", func(c *Config) *bool { return &c.Indexer.Async }),
	"indexer.workers": uintKey("indexer.workers", func(c *Config) *uint { return &c.Indexer.Workers }),

	"prompts.dir": stringKey(func(c *Config) *string { return &c.Prompts.Dir }),
}

// orderedConfigKeys lists the keys in TOML section order.
var orderedConfigKeys = []string{
	"storage.sqlite_path",
	"storage.postgres_dsn",
	"api.listen",
	"api.cors_origins",
	"client.api_target",
	"vector_store.provider",
	"vector_store.target",
	"vector_store.collection",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.dimensions",
	"llm.provider",
	"llm.target",
	"llm.model",
	"image.provider",
	"image.target",
	"image.model",
	"chat.top_k",
	"chat.similarity_threshold",
	"chat.fallback_top_k",
	"chat.fallback_similarity_threshold",
	"cache.provider",
	"cache.target",
	"cache.ttl",
	"events.provider",
	"events.brokers",
	"events.topic",
	"indexer.async",
	"indexer.workers",
	"prompts.dir",
}

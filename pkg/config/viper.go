package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/papercomputeco/shelf/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), loads .env files and binds environment
// variables with the SHELF_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (SHELF_API_LISTEN, SHELF_STORAGE_SQLITE_PATH, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := loadDotEnv(".env", filepath.Join(target, ".env")); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// loadDotEnv loads every existing file into the process environment.
// Variables already set in the environment are left untouched.
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// FromViper materializes a Config from the resolved viper values.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		API: APIConfig{
			Listen:      v.GetString("api.listen"),
			CORSOrigins: v.GetString("api.cors_origins"),
		},
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
		},
		VectorStore: VectorStoreConfig{
			Provider:   v.GetString("vector_store.provider"),
			Target:     v.GetString("vector_store.target"),
			Collection: v.GetString("vector_store.collection"),
		},
		Embedding: EmbeddingConfig{
			Provider:   v.GetString("embedding.provider"),
			Target:     v.GetString("embedding.target"),
			Model:      v.GetString("embedding.model"),
			Dimensions: v.GetUint("embedding.dimensions"),
		},
		LLM: LLMConfig{
			Provider: v.GetString("llm.provider"),
			Target:   v.GetString("llm.target"),
			Model:    v.GetString("llm.model"),
		},
		Image: ImageConfig{
			Provider: v.GetString("image.provider"),
			Target:   v.GetString("image.target"),
			Model:    v.GetString("image.model"),
		},
		Chat: ChatConfig{
			TopK:              v.GetUint("chat.top_k"),
			Threshold:         v.GetFloat64("chat.similarity_threshold"),
			FallbackTopK:      v.GetUint("chat.fallback_top_k"),
			FallbackThreshold: v.GetFloat64("chat.fallback_similarity_threshold"),
		},
		Cache: CacheConfig{
			Provider: v.GetString("cache.provider"),
			Target:   v.GetString("cache.target"),
			TTL:      v.GetString("cache.ttl"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetString("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
		Indexer: IndexerConfig{
			Async:   v.GetBool("indexer.async"),
			Workers: v.GetUint("indexer.workers"),
		},
		Prompts: PromptsConfig{
			Dir: v.GetString("prompts.dir"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	for _, key := range orderedConfigKeys {
		info := configKeys[key]
		v.SetDefault(key, info.get(d))
	}

	// Typed defaults so GetUint/GetFloat64/GetBool never parse empty strings.
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("chat.top_k", d.Chat.TopK)
	v.SetDefault("chat.similarity_threshold", d.Chat.Threshold)
	v.SetDefault("chat.fallback_top_k", d.Chat.FallbackTopK)
	v.SetDefault("chat.fallback_similarity_threshold", d.Chat.FallbackThreshold)
	v.SetDefault("indexer.async", d.Indexer.Async)
	v.SetDefault("indexer.workers", d.Indexer.Workers)
}

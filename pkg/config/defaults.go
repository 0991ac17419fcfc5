package config

const (
	defaultAPIListen       = ":8080"
	defaultCORSOrigins     = "http://localhost:5173"
	defaultClientAPITarget = "http://localhost:8080"

	defaultVectorProvider   = "inmemory"
	defaultVectorCollection = "shelf"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingModel      = "embeddinggemma"
	defaultEmbeddingDimensions = 768

	defaultLLMProvider   = "ollama"
	defaultImageProvider = "openai"
	defaultImageModel    = "dall-e-3"

	defaultChatTopK              = 5
	defaultChatThreshold         = 0.7
	defaultChatFallbackTopK      = 10
	defaultChatFallbackThreshold = 0.3

	defaultCacheTarget = "redis://localhost:6379"
	defaultCacheTTL    = "10m"

	defaultEventsProvider = "nop"
	defaultEventsBrokers  = "localhost:9092"
	defaultEventsTopic    = "shelf.orders"

	defaultIndexerWorkers = 3
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen:      defaultAPIListen,
			CORSOrigins: defaultCORSOrigins,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Collection: defaultVectorCollection,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
		},
		Image: ImageConfig{
			Provider: defaultImageProvider,
			Model:    defaultImageModel,
		},
		Chat: ChatConfig{
			TopK:              defaultChatTopK,
			Threshold:         defaultChatThreshold,
			FallbackTopK:      defaultChatFallbackTopK,
			FallbackThreshold: defaultChatFallbackThreshold,
		},
		Cache: CacheConfig{
			Target: defaultCacheTarget,
			TTL:    defaultCacheTTL,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Brokers:  defaultEventsBrokers,
			Topic:    defaultEventsTopic,
		},
		Indexer: IndexerConfig{
			Workers: defaultIndexerWorkers,
		},
	}
}

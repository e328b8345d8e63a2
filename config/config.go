package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// CatalogConfig locates the tag catalog and its persisted index.
type CatalogConfig struct {
	// CSVPath is the catalog source file.
	CSVPath string

	// StorageDir holds persisted index snapshots. Empty disables
	// persistence.
	StorageDir string
}

// EmbeddingConfig describes the embedding endpoint.
type EmbeddingConfig struct {
	Model   string
	BaseURL string
	APIKey  string
}

// RerankConfig describes the optional pairwise reranker.
type RerankConfig struct {
	// Enabled applies the reranker by default; requests may override.
	Enabled bool

	URL   string
	Model string
}

// CacheConfig describes the candidate pool cache.
type CacheConfig struct {
	// RedisAddr selects the Redis backend when non-empty; otherwise an
	// in-process cache is used.
	RedisAddr     string
	RedisPassword string

	// TTLSeconds bounds cached pool lifetime.
	TTLSeconds int
}

// ScoringConfig carries the ranking knobs.
type ScoringConfig struct {
	// NormalizeArabic enables Arabic-specific text normalization.
	NormalizeArabic bool

	// TopKCandidates is the shortlist size retrieved per query.
	TopKCandidates int

	// HybridAlpha weights semantic similarity against lexical overlap.
	HybridAlpha float64

	// RerankMeanThreshold gates reranking on pool confidence.
	RerankMeanThreshold float64

	// WidenOffset relaxes min_score in widen mode.
	WidenOffset float64
}

// Config is the full engine configuration.
type Config struct {
	Catalog   CatalogConfig
	Embedding EmbeddingConfig
	Rerank    RerankConfig
	Cache     CacheConfig
	Scoring   ScoringConfig
}

// Load reads configuration from the environment, consulting a .env file
// when present. Every knob has a working default except the catalog
// path and the embedding endpoint, which deployments must provide.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Catalog: CatalogConfig{
			CSVPath:    getEnv("TAGS_CSV", "tags.csv"),
			StorageDir: getEnv("STORAGE_DIR", "storage"),
		},
		Embedding: EmbeddingConfig{
			Model:   getEnv("EMBEDDING_MODEL", "intfloat/multilingual-e5-base"),
			BaseURL: getEnv("EMBEDDING_BASE_URL", ""),
			APIKey:  getEnv("EMBEDDING_API_KEY", ""),
		},
		Rerank: RerankConfig{
			Enabled: getEnvBool("USE_RERANKER", false),
			URL:     getEnv("RERANKER_URL", ""),
			Model:   getEnv("RERANKER_MODEL", ""),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			TTLSeconds:    getEnvInt("CACHE_TTL_SECONDS", 300),
		},
		Scoring: ScoringConfig{
			NormalizeArabic:     getEnvBool("NORMALIZE_ARABIC", true),
			TopKCandidates:      getEnvInt("TOPK_CANDIDATES", 100),
			HybridAlpha:         getEnvFloat("HYBRID_ALPHA", 0.8),
			RerankMeanThreshold: getEnvFloat("RERANK_MEAN_THRESHOLD", 0.6),
			WidenOffset:         getEnvFloat("WIDEN_OFFSET", 0.15),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

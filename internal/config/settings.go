package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrMissingCredentials is returned by Validate when a required secret or endpoint is unset.
var ErrMissingCredentials = errors.New("missing required configuration")

const (
	VectorBackendQdrant = "qdrant"
	VectorBackendMemory = "memory"

	EmbeddingProviderOpenAI = "openai"
	EmbeddingProviderGoogle = "google"
)

// Settings is the runtime surface read from the environment.
// Static tuning lives in the const block next to this file.
type Settings struct {
	LogLevel string `envconfig:"LOG_LEVEL"`
	IsProd   bool   `envconfig:"IS_PROD" default:"false"`

	ListenAddr   string `envconfig:"LISTEN_ADDR"`
	AuthToken    string `envconfig:"AUTH_TOKEN"`
	NoAuthBypass bool   `envconfig:"NO_AUTH_BYPASS" default:"false"`

	VectorBackend string `envconfig:"VECTOR_BACKEND" default:"qdrant"`
	QdrantHost    string `envconfig:"QDRANT_HOST"`
	QdrantPort    int    `envconfig:"QDRANT_PORT" default:"6334"`
	QdrantAPIKey  string `envconfig:"QDRANT_API_KEY"`
	QdrantUseTLS  bool   `envconfig:"QDRANT_USE_TLS" default:"false"`
	Collection    string `envconfig:"QDRANT_COLLECTION" default:"documents_oag_compliance"`

	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER" default:"openai"`
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`
	GeminiModel       string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	TavilyAPIKey      string `envconfig:"TAVILY_API_KEY"`

	ChunkSize      int    `envconfig:"CHUNK_SIZE" default:"500"`
	ChunkOverlap   int    `envconfig:"CHUNK_OVERLAP" default:"200"`
	TopK           int    `envconfig:"TOP_K" default:"5"`
	RegulationsDir string `envconfig:"REGULATIONS_DIR" default:"RAG/Regulations"`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
}

// Load reads .env (if present) and then the process environment.
// It does not validate; call Validate before constructing any client.
func Load() (*Settings, error) {
	_ = godotenv.Load(".env")

	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	s.VectorBackend = strings.ToLower(strings.TrimSpace(s.VectorBackend))
	s.EmbeddingProvider = strings.ToLower(strings.TrimSpace(s.EmbeddingProvider))
	if s.ListenAddr == "" {
		s.ListenAddr = ServerListenAddr
	}
	return &s, nil
}

// Validate checks credentials for every external service the process will talk to.
func (s *Settings) Validate() error {
	switch s.VectorBackend {
	case VectorBackendQdrant:
		if s.QdrantHost == "" {
			return fmt.Errorf("%w: QDRANT_HOST", ErrMissingCredentials)
		}
	case VectorBackendMemory:
	default:
		return fmt.Errorf("unknown VECTOR_BACKEND %q", s.VectorBackend)
	}

	switch s.EmbeddingProvider {
	case EmbeddingProviderOpenAI:
		if s.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingCredentials)
		}
	case EmbeddingProviderGoogle:
		if s.GeminiAPIKey == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingCredentials)
		}
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", s.EmbeddingProvider)
	}

	if s.ChunkSize <= 0 || s.ChunkOverlap < 0 || s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("invalid chunking: size %d overlap %d", s.ChunkSize, s.ChunkOverlap)
	}
	if s.TopK <= 0 {
		s.TopK = DefaultTopK
	}
	return nil
}

// ValidateLLM is the extra check for entry points that run agents, not just ingestion.
func (s *Settings) ValidateLLM() error {
	if s.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY", ErrMissingCredentials)
	}
	return nil
}

// WebSearchEnabled reports whether the web search tool can be offered to agents.
func (s *Settings) WebSearchEnabled() bool {
	return s.TavilyAPIKey != ""
}

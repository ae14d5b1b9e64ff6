package config

import (
	"log/slog"
	"time"
)

type traceKey string

const (
	IS_PROD                                  = false
	LOG_LEVEL_PROD                           = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE          = true //if redis init fails, it falls back to an internal in-memory store
	TRACE_ID_KEY                    traceKey = "traceId"
	RATE_LIMIT_PER_SECOND                    = 2
	BURST_RATE_LIMIT_PER_SECOND              = 5

	//chunking
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 200

	//retrieval
	DefaultTopK           = 5
	DefaultRegulationsDir = "RAG/Regulations"
	EmbeddingBatchSize    = 100
	EmbeddingParallelism  = 4

	EmbeddingOutputDimensionality int32 = 1536 //ada-002 and gemini-embedding-001 truncated to the same size
	EmbeddingDBName                     = "documents_oag_compliance"
	CorpusPayloadKey                    = "corpus"

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 30 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit   = 100
	MaxUploadSize = 32 << 20 //32mb
	UploadDir     = "temporary_data"

	//triage run
	TriageTimeout        = 3 * time.Minute
	JobTimeout           = 5 * time.Minute
	SupervisorMaxSteps   = 6
	AgentMaxToolCalls    = 3
	ClassifierInputLimit = 12000
	ExcerptLimit         = 8000

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantGrpcPort          = 6334
	QdrantPoolSize          = 1 //2-5 is preferred for prod according to documentation

	//llm
	GeminiModelName          = "gemini-2.5-flash"
	ModelTemperature float32 = 0.2
	LLMCallTimeout           = 60 * time.Second

	//embeddings
	OpenAIEmbeddingModel = "text-embedding-ada-002"
	GoogleEmbeddingModel = "gemini-embedding-001"
	EmbeddingCallTimeout = 30 * time.Second

	//web search
	TavilySearchURL         = "https://api.tavily.com/search"
	WebSearchDefaultResults = 5
	WebSearchTimeout        = 20 * time.Second

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	RedisAddr = "127.0.0.1:6379"

	//redis has 16 DB we can use
	RedisJobStore    = 0
	RedisReportStore = 1

	//redis timeouts
	RedisJobStoreTTL    = 24 * time.Hour
	RedisReportStoreTTL = 24 * time.Hour
	RedisPingTimeout    = 3 * time.Second
	RedisIOTimeout      = 30 * time.Second
)

package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//serverTimeouts
	ReadTimeout = 5 * time.Second
	//WriteTimeout is zero on purpose: answers stream for as long as the model
	//produces tokens and must not be cut off by the server
	WriteTimeout           = 0 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//retrieval defaults
	DefaultRetrieveK     = 5
	DefaultMinSimilarity = 0.35
	DefaultPromptBudget  = 4000

	//chunking defaults
	DefaultMaxChunkLen = 1000

	//model services
	DefaultOllamaAddr     = "http://localhost:11434"
	DefaultLLMProvider    = "ollama"
	DefaultEmbedProvider  = "ollama"
	DefaultOllamaLLMModel = "llama3.2"
	DefaultOllamaEmbModel = "nomic-embed-text"
	DefaultEmbedDimension = 768

	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"

	ModelTemperature float32 = 0.7
	ModelContextSize         = 4096

	ModelCallTimeout = 120 * time.Second
	EmbedCallTimeout = 30 * time.Second

	//index artifact
	DefaultIndexPath = "artefacts/index.gob"

	SystemInstruction = "You are a helpful assistant for WAEC past questions. " +
		"Answer using only the supplied context. If the provided questions do not " +
		"contain enough information to answer, state that you don't have enough information."

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis document store
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisDocumentStore = 0
	RedisPassword      = ""
)

// Every external knob is independently overridable through the environment.
// Defaults above keep a laptop setup working against a local Ollama and Redis.

func ModelAddr() string {
	return getEnv("MODEL_ADDR", DefaultOllamaAddr)
}

func EmbedAddr() string {
	return getEnv("EMBED_ADDR", DefaultOllamaAddr)
}

func LLMProvider() string {
	return getEnv("LLM_PROVIDER", DefaultLLMProvider)
}

func EmbedProvider() string {
	return getEnv("EMBED_PROVIDER", DefaultEmbedProvider)
}

func LLMModel() string {
	return getEnv("LLM_MODEL", DefaultOllamaLLMModel)
}

func EmbedModel() string {
	return getEnv("EMBED_MODEL", DefaultOllamaEmbModel)
}

func EmbedDimension() int {
	return getEnvInt("EMBED_DIMENSION", DefaultEmbedDimension)
}

func MaxChunkLen() int {
	return getEnvInt("MAX_CHUNK_LEN", DefaultMaxChunkLen)
}

func RetrieveK() int {
	return getEnvInt("RETRIEVE_K", DefaultRetrieveK)
}

func MinSimilarity() float32 {
	return getEnvFloat("MIN_SIMILARITY", DefaultMinSimilarity)
}

func PromptBudget() int {
	return getEnvInt("PROMPT_BUDGET", DefaultPromptBudget)
}

func IndexPath() string {
	return getEnv("INDEX_PATH", DefaultIndexPath)
}

func RedisAddress() string {
	return getEnv("REDIS_ADDR", RedisAddr)
}

func GoogleAPIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float32) float32 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return fallback
	}
	return float32(f)
}

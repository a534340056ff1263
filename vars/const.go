package vars

import (
	"os"
	"strconv"
	"sync"
	"time"
)

var (
	invalidMu  sync.Mutex
	invalidEnv = map[string]string{}
)

func markInvalid(key, value string) {
	invalidMu.Lock()
	invalidEnv[key] = value
	invalidMu.Unlock()
}

// InvalidEnv lists variables whose values could not be parsed and were
// replaced by their defaults, keyed by variable name.
func InvalidEnv() map[string]string {
	invalidMu.Lock()
	defer invalidMu.Unlock()
	out := make(map[string]string, len(invalidEnv))
	for k, v := range invalidEnv {
		out[k] = v
	}
	return out
}

// GetEnv 获取环境变量，如果不存在则返回默认值
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvInt parses an integer variable. Malformed values yield the fallback
// and are reported by InvalidEnv.
func GetEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		markInvalid(key, value)
		return fallback
	}
	return n
}

// GetEnvDuration parses a time.ParseDuration string such as "45s".
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		markInvalid(key, value)
		return fallback
	}
	return d
}

const (
	// 模型名称
	MINILM     = "all-minilm"
	FASTMINILM = "sentence-transformers/all-MiniLM-L6-v2"
	QWEN3B     = "qwen2.5:3b"

	// Embedding / summary backends
	ProviderOllama    = "ollama"
	ProviderFastEmbed = "fastembed"
	ProviderOpenAI    = "openai"
	ProviderNone      = "none"

	// ES index holding one document per risk finding
	FINDINGS_INDEX = "contract_findings_v1"
)

// 环境变量配置（支持 Docker 部署）
var (
	HTTP_ADDR = GetEnv("HTTP_ADDR", ":8081")

	LOG_LEVEL  = GetEnv("LOG_LEVEL", "info")
	LOG_FORMAT = GetEnv("LOG_FORMAT", "json")

	// OLLAMA
	OLLAMA_PATH = GetEnv("OLLAMA_PATH", "http://localhost:11434")

	// Embeddings
	EMBED_PROVIDER  = GetEnv("EMBED_PROVIDER", ProviderOllama)
	EMBED_MODEL     = GetEnv("EMBED_MODEL", MINILM)
	FASTEMBED_CACHE = GetEnv("FASTEMBED_CACHE", "local_cache")

	// Summarization
	SUMMARY_PROVIDER = GetEnv("SUMMARY_PROVIDER", ProviderOllama)
	SUMMARY_MODEL    = GetEnv("SUMMARY_MODEL", QWEN3B)
	OPENAI_API_KEY   = GetEnv("OPENAI_API_KEY", "")
	OPENAI_BASE_URL  = GetEnv("OPENAI_BASE_URL", "")

	MODEL_TIMEOUT = GetEnvDuration("MODEL_TIMEOUT", 60*time.Second)

	// PG
	PGUSER = GetEnv("PGUSER", "root")
	PGPWD  = GetEnv("PGPWD", "workguard")
	PGDB   = GetEnv("PGDB", "workguard")
	PGHOST = GetEnv("PGHOST", "localhost")
	PGPORT = GetEnv("PGPORT", "5432")

	// ES
	ESADDR   = GetEnv("ESADDR", "http://localhost:9200")
	ES_INDEX = GetEnv("ES_INDEX", FINDINGS_INDEX)

	UPLOAD_DIR     = GetEnv("UPLOAD_DIR", "uploads")
	RETENTION_DAYS = GetEnvInt("RETENTION_DAYS", 90)

	// 提示词
	SUMMARIZE = `You are a contract analyst. Write an abstractive summary of the contract excerpt below.
Keep it between {{.MinTokens}} and {{.MaxTokens}} tokens, plain prose, no lists, no preamble.
Mention the parties' main obligations, payment, term and termination when present.

Contract excerpt:
{{.Content}}
`
)

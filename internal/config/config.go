package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/legisdesk/bill-registry/internal/llm"
)

// Bill sources understood by STORE_SOURCE.
const (
	SourceStatic        = "static"
	SourceRemote        = "remote"
	SourcePostgres      = "postgres"
	SourceElasticsearch = "elasticsearch"
)

// Common contains Elasticsearch parameters shared by every service.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Store selects where the API loads its record set from.
type Store struct {
	Source       string
	BillsURL     string
	PostgresDSN  string
	FetchTimeout time.Duration
	NewsFeeds    []string
	NewsPerFeed  int
}

// LLM configures the text-generation collaborator.
type LLM struct {
	Provider       string
	APIKey         string
	BaseURL        string
	TranslateModel string
	ChatModel      string
	Timeout        time.Duration
	MaxTokens      int
	Rate           float64
	Burst          int
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	Store
	LLM
	BindAddr       string
	DefaultPage    int
	MaxPage        int
	RedisAddr      string
	TranslationTTL time.Duration
	SessionTTL     time.Duration
}

// Worker holds configuration for the Kafka -> Elasticsearch worker.
type Worker struct {
	Common
	KafkaBrokers   []string
	KafkaTopic     string
	KafkaDLQTopic  string
	KafkaConsumer  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
	DLQAttempts    int
}

// Sync configures the scheduled fetch that feeds the worker.
type Sync struct {
	Common
	Store
	KafkaBrokers []string
	KafkaTopic   string
	Interval     time.Duration
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:         loadCommon(),
		Store:          loadStore(),
		LLM:            loadLLM(),
		BindAddr:       getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultPage:    getInt("API_PAGE_SIZE", 20),
		MaxPage:        getInt("API_MAX_PAGE_SIZE", 100),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		TranslationTTL: getDuration("TRANSLATION_TTL", "24h"),
		SessionTTL:     getDuration("SESSION_TTL", "30m"),
	}

	if err := c.Store.validate(); err != nil {
		return nil, err
	}
	if err := c.LLM.validate(); err != nil {
		return nil, err
	}
	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}
	if c.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "bill_updates"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "bill-worker"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "24h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
		DLQAttempts:    getInt("WORKER_DLQ_ATTEMPTS", 5),
	}
	c.KafkaDLQTopic = getEnv("KAFKA_DLQ_TOPIC", c.KafkaTopic+"_dlq")

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}
	if c.DLQAttempts <= 0 {
		return nil, fmt.Errorf("WORKER_DLQ_ATTEMPTS must be positive")
	}

	return c, nil
}

// LoadSync builds a Sync config from environment variables.
func LoadSync() (*Sync, error) {
	c := &Sync{
		Common:       loadCommon(),
		Store:        loadStore(),
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "bill_updates"),
		Interval:     getDuration("SYNC_INTERVAL", "24h"),
	}
	if c.Source == SourceStatic {
		c.Source = SourceRemote
	}

	if c.Source != SourceRemote && c.Source != SourcePostgres {
		return nil, fmt.Errorf("STORE_SOURCE for sync must be %q or %q", SourceRemote, SourcePostgres)
	}
	if err := c.Store.validate(); err != nil {
		return nil, err
	}
	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("SYNC_INTERVAL must be positive")
	}

	return c, nil
}

// ProviderConfig returns the llm configuration for the given model.
func (c LLM) ProviderConfig(model string) llm.Config {
	return llm.Config{
		Provider:          c.Provider,
		Model:             model,
		APIKey:            c.APIKey,
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		MaxTokens:         c.MaxTokens,
		RequestsPerSecond: c.Rate,
		Burst:             c.Burst,
	}
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "bills"),
	}
}

func loadStore() Store {
	return Store{
		Source:       strings.ToLower(getEnv("STORE_SOURCE", SourceStatic)),
		BillsURL:     getEnv("BILLS_URL", ""),
		PostgresDSN:  getEnv("POSTGRES_DSN", ""),
		FetchTimeout: getDuration("STORE_FETCH_TIMEOUT", "10s"),
		NewsFeeds:    splitAndTrim(getEnv("NEWS_FEEDS", "")),
		NewsPerFeed:  getInt("NEWS_PER_FEED", 10),
	}
}

func loadLLM() LLM {
	return LLM{
		Provider:       strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		APIKey:         getEnv("LLM_API_KEY", ""),
		BaseURL:        getEnv("LLM_BASE_URL", ""),
		TranslateModel: getEnv("LLM_TRANSLATE_MODEL", "gemini-3-flash-preview"),
		ChatModel:      getEnv("LLM_CHAT_MODEL", "gemini-3-pro-preview"),
		Timeout:        getDuration("LLM_TIMEOUT", "30s"),
		MaxTokens:      getInt("LLM_MAX_TOKENS", 2048),
		Rate:           getFloat("LLM_RATE", 2),
		Burst:          getInt("LLM_BURST", 5),
	}
}

func (s Store) validate() error {
	switch s.Source {
	case SourceStatic, SourceElasticsearch:
	case SourceRemote:
		if s.BillsURL == "" {
			return fmt.Errorf("BILLS_URL is required when STORE_SOURCE=%s", SourceRemote)
		}
	case SourcePostgres:
		if s.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE_SOURCE=%s", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_SOURCE %q", s.Source)
	}
	if s.NewsPerFeed <= 0 {
		return fmt.Errorf("NEWS_PER_FEED must be positive")
	}
	return nil
}

func (c LLM) validate() error {
	switch c.Provider {
	case "", "none", "gemini", "google", "openai", "ollama":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}
	if c.Rate < 0 {
		return fmt.Errorf("LLM_RATE cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

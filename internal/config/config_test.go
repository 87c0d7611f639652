package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/legisdesk/bill-registry/internal/config"
)

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_TOPIC", "")
	t.Setenv("KAFKA_DLQ_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://elasticsearch:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "bills", cfg.ElasticsearchIndex)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "bill_updates", cfg.KafkaTopic)
	require.Equal(t, "bill_updates_dlq", cfg.KafkaDLQTopic)
	require.Equal(t, "bill-worker", cfg.KafkaConsumer)
	require.Equal(t, 5, cfg.DLQAttempts)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("ELASTICSEARCH_ADDR", "http://localhost:9999")
	t.Setenv("ELASTICSEARCH_INDEX", "custom")
	t.Setenv("KAFKA_BROKERS", "broker-a:29092, broker-b:29093")
	t.Setenv("KAFKA_TOPIC", "custom_topic")
	t.Setenv("KAFKA_DLQ_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")
	t.Setenv("WORKER_BATCH_SIZE", "3")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:9999", cfg.ElasticsearchAddr)
	require.Equal(t, "custom", cfg.ElasticsearchIndex)
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.KafkaBrokers)
	require.Equal(t, "custom_topic", cfg.KafkaTopic)
	require.Equal(t, "custom_topic_dlq", cfg.KafkaDLQTopic)
	require.Equal(t, "custom-group", cfg.KafkaConsumer)
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 3, cfg.BatchSize)
}

func TestLoadWorkerRejectsInvalid(t *testing.T) {
	t.Setenv("WORKER_BATCH_SIZE", "0")

	_, err := config.LoadWorker()
	require.Error(t, err)
}

func TestLoadAPIDefaults(t *testing.T) {
	for _, key := range []string{"STORE_SOURCE", "LLM_PROVIDER", "LLM_TIMEOUT", "REDIS_ADDR", "NEWS_FEEDS", "SESSION_TTL"} {
		t.Setenv(key, "")
	}

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, config.SourceStatic, cfg.Source)
	require.Equal(t, "gemini", cfg.Provider)
	require.Equal(t, "gemini-3-flash-preview", cfg.TranslateModel)
	require.Equal(t, "gemini-3-pro-preview", cfg.ChatModel)
	require.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	require.Equal(t, 30*time.Minute, cfg.SessionTTL)
	require.Equal(t, 24*time.Hour, cfg.TranslationTTL)
	require.Empty(t, cfg.RedisAddr)
	require.Empty(t, cfg.NewsFeeds)
}

func TestLoadAPI(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("API_PAGE_SIZE", "15")
	t.Setenv("API_MAX_PAGE_SIZE", "200")
	t.Setenv("ELASTICSEARCH_ADDR", "http://api-es:9200")
	t.Setenv("ELASTICSEARCH_INDEX", "api-index")
	t.Setenv("STORE_SOURCE", "Remote")
	t.Setenv("BILLS_URL", "https://example.org/bills")
	t.Setenv("NEWS_FEEDS", "https://a.example/rss, https://b.example/rss")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_RATE", "0.5")
	t.Setenv("LLM_BURST", "2")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, 15, cfg.DefaultPage)
	require.Equal(t, 200, cfg.MaxPage)
	require.Equal(t, "http://api-es:9200", cfg.ElasticsearchAddr)
	require.Equal(t, "api-index", cfg.ElasticsearchIndex)
	require.Equal(t, config.SourceRemote, cfg.Source)
	require.Equal(t, "https://example.org/bills", cfg.BillsURL)
	require.Len(t, cfg.NewsFeeds, 2)
	require.Equal(t, "redis:6379", cfg.RedisAddr)

	pc := cfg.LLM.ProviderConfig(cfg.ChatModel)
	require.Equal(t, "openai", pc.Provider)
	require.Equal(t, cfg.ChatModel, pc.Model)
	require.InDelta(t, 0.5, pc.RequestsPerSecond, 1e-9)
	require.Equal(t, 2, pc.Burst)
}

func TestLoadAPIValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "remote without url", env: map[string]string{"STORE_SOURCE": "remote", "BILLS_URL": ""}},
		{name: "postgres without dsn", env: map[string]string{"STORE_SOURCE": "postgres", "POSTGRES_DSN": ""}},
		{name: "unknown source", env: map[string]string{"STORE_SOURCE": "mysql"}},
		{name: "unknown provider", env: map[string]string{"LLM_PROVIDER": "anthropic"}},
		{name: "page above max", env: map[string]string{"API_PAGE_SIZE": "50", "API_MAX_PAGE_SIZE": "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.LoadAPI()
			require.Error(t, err)
		})
	}
}

func TestLoadSync(t *testing.T) {
	t.Setenv("STORE_SOURCE", "")
	t.Setenv("BILLS_URL", "https://example.org/bills")
	t.Setenv("SYNC_INTERVAL", "12h")
	t.Setenv("KAFKA_TOPIC", "")

	cfg, err := config.LoadSync()
	require.NoError(t, err)
	require.Equal(t, config.SourceRemote, cfg.Source)
	require.Equal(t, 12*time.Hour, cfg.Interval)
	require.Equal(t, "bill_updates", cfg.KafkaTopic)
}

func TestLoadSyncRejectsIndexSource(t *testing.T) {
	t.Setenv("STORE_SOURCE", "elasticsearch")

	_, err := config.LoadSync()
	require.Error(t, err)
}

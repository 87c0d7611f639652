package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/legisdesk/bill-registry/internal/config"
	"github.com/legisdesk/bill-registry/internal/elasticsearch"
	"github.com/legisdesk/bill-registry/internal/logger"
	"github.com/legisdesk/bill-registry/internal/processing"
	"github.com/legisdesk/bill-registry/internal/store"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type pruner interface {
	DeleteExcept(ctx context.Context, keep []string) (int64, error)
}

func main() {
	log := logger.New("syncer")
	cfg, err := config.LoadSync()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var src store.RowSource
	switch cfg.Source {
	case config.SourcePostgres:
		pg, err := store.OpenPostgres(ctx, cfg.PostgresDSN, log)
		if err != nil {
			log.Error("open postgres", slog.Any("err", err))
			os.Exit(1)
		}
		defer pg.Close()
		src = pg
	default:
		src = store.NewRemoteLoader(cfg.BillsURL, cfg.FetchTimeout, log)
	}

	esClient := connectElasticsearch(ctx, log, cfg)

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
	}
	defer writer.Close()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("sync job running",
		slog.Duration("interval", cfg.Interval),
		slog.String("source", cfg.Source),
		slog.String("topic", cfg.KafkaTopic),
	)

	// Run immediately on start, but don't fail if the source is temporarily unavailable
	runOnce(ctx, log, src, writer, esClient)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, src, writer, esClient)
		}
	}
}

// connectElasticsearch waits for the index with exponential backoff. A nil
// result disables pruning; publishing still works without the index.
func connectElasticsearch(ctx context.Context, log *slog.Logger, cfg *config.Sync) pruner {
	maxRetries := 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err != nil {
			log.Warn("failed to create elasticsearch client, retrying",
				slog.Any("err", err),
				slog.Int("attempt", i+1),
				slog.Int("max_retries", maxRetries),
			)
		} else {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := esClient.Ping(pingCtx)
			cancel()
			if pingErr == nil {
				log.Info("connected to elasticsearch")
				return esClient
			}
			log.Warn("elasticsearch ping failed, retrying",
				slog.Any("err", pingErr),
				slog.Int("attempt", i+1),
				slog.Int("max_retries", maxRetries),
				slog.Duration("retry_in", retryDelay),
			)
		}

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			log.Info("shutdown signal received during startup")
			os.Exit(0)
		}
		retryDelay *= 2
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}

	log.Warn("elasticsearch unreachable, pruning disabled")
	return nil
}

// runOnce publishes every fetched row keyed by id and then prunes bills that
// are no longer present at the source.
func runOnce(ctx context.Context, log *slog.Logger, src store.RowSource, w messageWriter, p pruner) {
	subCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	published, keep, err := publishRows(subCtx, src, w)
	if err != nil {
		log.Warn("sync run failed (will retry on next interval)", slog.Any("err", err))
		return
	}
	log.Info("sync run published bills",
		slog.Int("published", published),
		slog.Int("valid", len(keep)),
	)

	if p == nil || len(keep) == 0 {
		return
	}
	deleted, err := p.DeleteExcept(subCtx, keep)
	if err != nil {
		log.Warn("prune failed", slog.Any("err", err))
		return
	}
	if deleted > 0 {
		log.Info("pruned bills missing from source", slog.Int64("deleted", deleted))
	} else {
		log.Debug("prune completed, nothing to delete")
	}
}

// publishRows returns how many rows were published and the ids that pass validation.
func publishRows(ctx context.Context, src store.RowSource, w messageWriter) (int, []string, error) {
	rows, err := src.FetchRows(ctx)
	if err != nil {
		return 0, nil, err
	}

	msgs := make([]kafka.Message, 0, len(rows))
	keep := make([]string, 0, len(rows))
	for _, row := range rows {
		payload, err := json.Marshal(row)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal bill row: %w", err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(row.ID.String()), Value: payload})

		if bill, err := processing.BillFromRow(row); err == nil {
			keep = append(keep, bill.ID)
		}
	}
	if len(msgs) == 0 {
		return 0, keep, nil
	}

	if err := w.WriteMessages(ctx, msgs...); err != nil {
		return 0, nil, fmt.Errorf("publish bill rows: %w", err)
	}
	return len(msgs), keep, nil
}

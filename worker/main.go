package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/legisdesk/bill-registry/internal/config"
	"github.com/legisdesk/bill-registry/internal/dedupe"
	"github.com/legisdesk/bill-registry/internal/elasticsearch"
	"github.com/legisdesk/bill-registry/internal/logger"
	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/processing"
)

// dlqBackoff is the first delay between dead-letter write attempts; it doubles each time.
var dlqBackoff = time.Second

type billIndexer interface {
	IndexBill(ctx context.Context, doc models.BillDocument) error
	Revision(ctx context.Context, id string) (string, error)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit only
	})
	defer reader.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaDLQTopic,
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("dlq_topic", cfg.KafkaDLQTopic),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, esClient, cache, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			delivered, dlqErr := deadLetter(ctx, log, dlqWriter, msg, err, cfg.DLQAttempts)
			if errors.Is(dlqErr, context.Canceled) {
				log.Info("context canceled during DLQ retry")
				return
			}
			// Skip the commit when the DLQ write failed so the message is redelivered on restart.
			if !delivered {
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

// processMessage validates one bill update and indexes it unless its revision
// is already stored. Returned errors route the message to the DLQ.
func processMessage(ctx context.Context, log *slog.Logger, idx billIndexer, cache *dedupe.Cache, msg kafka.Message) error {
	var row models.BillRow
	if err := json.Unmarshal(msg.Value, &row); err != nil {
		return fmt.Errorf("decode bill update: %w", err)
	}

	bill, err := processing.BillFromRow(row)
	if err != nil {
		return err
	}

	rev := processing.RevisionHash(bill)
	if cache.Unchanged(bill.ID, rev) {
		log.Debug("unchanged bill", slog.String("id", bill.ID))
		return nil
	}

	stored, err := idx.Revision(ctx, bill.ID)
	if err != nil {
		log.Warn("read stored revision", slog.String("id", bill.ID), slog.Any("err", err))
	}
	if stored == rev {
		cache.Record(bill.ID, rev)
		log.Debug("bill already indexed", slog.String("id", bill.ID))
		return nil
	}

	doc := models.BillDocument{
		Bill:      bill,
		Revision:  rev,
		IndexedAt: time.Now().UTC(),
	}
	if err := idx.IndexBill(ctx, doc); err != nil {
		return err
	}

	cache.Record(bill.ID, rev)
	log.Info("indexed bill",
		slog.String("id", bill.ID),
		slog.String("title", bill.Title),
		slog.String("status", string(bill.Status)),
	)
	return nil
}

// deadLetter forwards msg with its failure context, retrying with exponential
// backoff. It reports whether the write succeeded.
func deadLetter(ctx context.Context, log *slog.Logger, w messageWriter, msg kafka.Message, cause error, attempts int) (bool, error) {
	dlqMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := range attempts {
		dlqErr := w.WriteMessages(ctx, dlqMsg)
		if dlqErr == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true, nil
		}

		backoff := dlqBackoff * time.Duration(1<<uint(attempt))
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", dlqErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return false, nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/legisdesk/bill-registry/internal/cache"
	"github.com/legisdesk/bill-registry/internal/chat"
	"github.com/legisdesk/bill-registry/internal/config"
	"github.com/legisdesk/bill-registry/internal/elasticsearch"
	"github.com/legisdesk/bill-registry/internal/feeds"
	"github.com/legisdesk/bill-registry/internal/llm"
	"github.com/legisdesk/bill-registry/internal/logger"
	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/session"
	"github.com/legisdesk/bill-registry/internal/store"
	"github.com/legisdesk/bill-registry/internal/translate"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var esClient *elasticsearch.Client
	if cfg.Source == config.SourceElasticsearch {
		esClient, err = elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err != nil {
			log.Error("init elasticsearch", slog.Any("err", err))
			os.Exit(1)
		}
	}

	records := loadStore(ctx, log, cfg, esClient)
	bills, news := records.Len()
	log.Info("record store loaded",
		slog.String("source", cfg.Source),
		slog.Int("bills", bills),
		slog.Int("news", news),
	)

	translations := cache.NewLayeredCache(cache.NewMemoryCache(cfg.TranslationTTL, 10*time.Minute), nil)
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisCache(cfg.RedisAddr, cfg.TranslationTTL)
		defer rc.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn("redis unavailable, translations cached in memory only", slog.Any("err", err))
		} else {
			translations = cache.NewLayeredCache(cache.NewMemoryCache(cfg.TranslationTTL, 10*time.Minute), rc)
		}
		cancel()
	}

	// Translation and chat draw from one LLM_RATE budget.
	limiter := llm.NewLimiter(cfg.Rate, cfg.Burst)
	translateCfg := cfg.LLM.ProviderConfig(cfg.TranslateModel)
	translateCfg.Limiter = limiter
	chatCfg := cfg.LLM.ProviderConfig(cfg.ChatModel)
	chatCfg.Limiter = limiter

	translator := translate.New(newProvider(ctx, log, translateCfg), translate.Options{
		Model:    cfg.TranslateModel,
		Cache:    translations,
		CacheTTL: cfg.TranslationTTL,
		Log:      log,
	})
	chatter := chat.New(newProvider(ctx, log, chatCfg), cfg.ChatModel, log)

	srv := &server{
		log:         log,
		store:       records,
		translator:  translator,
		defaultPage: cfg.DefaultPage,
		maxPage:     cfg.MaxPage,
	}
	opts := session.Options{TTL: cfg.SessionTTL, Log: log}
	if esClient != nil {
		srv.search = esClient
		srv.health = esClient.Health
		opts.Sync = esClient.Ping
	}
	srv.sessions = session.NewRegistry(records, translator, chatter, opts)
	defer srv.sessions.Close()

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * cfg.LLM.Timeout,
	}

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

// loadStore builds the record store once. Every source except static falls
// back to the fixed bill set when it cannot be read.
func loadStore(ctx context.Context, log *slog.Logger, cfg *config.API, esClient *elasticsearch.Client) *store.Store {
	seed := store.Static()

	loadCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout+5*time.Second)
	defer cancel()

	var bills []models.Bill
	switch cfg.Source {
	case config.SourceRemote:
		bills = store.LoadBills(loadCtx, store.NewRemoteLoader(cfg.BillsURL, cfg.FetchTimeout, log), log)
	case config.SourcePostgres:
		pg, err := store.OpenPostgres(loadCtx, cfg.PostgresDSN, log)
		if err != nil {
			log.Warn("postgres unavailable, serving fallback set", slog.Any("err", err))
			bills = store.FallbackBills()
			break
		}
		bills = store.LoadBills(loadCtx, pg, log)
		_ = pg.Close()
	case config.SourceElasticsearch:
		bills = store.LoadBills(loadCtx, esClient, log)
	default:
		bills = seed.Bills()
	}

	news := seed.News()
	if len(cfg.NewsFeeds) > 0 {
		fetched := feeds.NewLoader(cfg.NewsFeeds, cfg.NewsPerFeed, cfg.FetchTimeout, log).Load(loadCtx)
		if len(fetched) > 0 {
			news = fetched
		} else {
			log.Warn("news feeds returned nothing, serving seed news")
		}
	}

	return store.New(bills, news)
}

func newProvider(ctx context.Context, log *slog.Logger, cfg llm.Config) llm.Provider {
	p, err := llm.NewProvider(ctx, cfg)
	if err != nil {
		log.Warn("text generation disabled", slog.String("provider", cfg.Provider), slog.Any("err", err))
		return nil
	}
	if p == nil {
		log.Info("text generation disabled by configuration")
	}
	return p
}

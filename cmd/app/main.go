package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Domenick1991/farmstay/api"
	"github.com/Domenick1991/farmstay/config"
	"github.com/Domenick1991/farmstay/internal/bootstrap"
	"github.com/Domenick1991/farmstay/internal/cache"
	"github.com/Domenick1991/farmstay/internal/kafka"
	"github.com/Domenick1991/farmstay/internal/knowledge"
	"github.com/Domenick1991/farmstay/internal/logging"
	"github.com/Domenick1991/farmstay/internal/repository"
	"github.com/Domenick1991/farmstay/internal/router"
	"github.com/Domenick1991/farmstay/internal/service/availability"
	"github.com/Domenick1991/farmstay/internal/service/chat"
	"github.com/Domenick1991/farmstay/internal/service/dialogue"
	"github.com/Domenick1991/farmstay/internal/service/reservation"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	storeOpts := []cache.StoreOption{cache.WithSessionTTL(cfg.Session.TTL())}
	if cache.StoreType(cfg.Session.Store) == cache.StoreTypeRedis {
		client := cache.NewRedisClient(cfg.Redis)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("connect redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		storeOpts = append(storeOpts, cache.WithRedisClient(client))
	}
	sessions, err := cache.NewStore(cache.StoreType(cfg.Session.Store), storeOpts...)
	if err != nil {
		logger.Fatal("init session store", zap.String("store", cfg.Session.Store), zap.Error(err))
	}
	defer sessions.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		logger.Warn("kafka unavailable, events will be dropped", zap.Error(err))
	}

	reservationRepo := repository.NewReservationRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)

	engine := availability.NewEngine(cfg.Booking.Catalog(), reservationRepo)
	reservationService := reservation.NewReservationService(
		reservationRepo,
		producer,
		cfg.Kafka.EventsTopic,
		reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		reservation.WithChecker(engine),
		reservation.WithLocker(sessions, cfg.Session.LockTTL()),
		reservation.WithLogger(logger.Named("reservation")),
	)

	responder, err := knowledge.Load(cfg.Knowledge.File)
	if err != nil {
		logger.Fatal("load knowledge", zap.Error(err))
	}
	topics, err := router.LoadTopics(cfg.Knowledge.File)
	if err != nil {
		logger.Fatal("load topics", zap.Error(err))
	}
	rules := router.DefaultRules().WithTopics(topics)
	if missing := responder.Missing(rules.InfoKeys()); len(missing) > 0 {
		logger.Warn("knowledge file has no answer for some topics", zap.Strings("keys", missing))
	}

	counters := router.NewAtomicCounters()
	classifier := router.NewClassifier(rules,
		router.WithCounters(counters),
		router.WithDiagnostics(router.NewZapDiagnostics(logger.Named("router"))),
	)
	flow := dialogue.NewFlow(engine, reservationService,
		dialogue.WithLogger(logger.Named("dialogue")),
		dialogue.WithResetDetector(rules.IsReset),
	)
	executor := chat.NewExecutor(responder, responder, flow,
		chat.WithGeneralHandler(responder),
		chat.WithExperienceDetector(rules.Experience),
		chat.WithExecutorLogger(logger.Named("executor")),
	)
	chatService := chat.NewService(sessions, classifier, executor,
		chat.WithConversationLogger(conversationRepo),
		chat.WithLogger(logger.Named("chat")),
	)

	handlers := bootstrap.Handlers{
		Chat:         api.NewChatHandler(chatService),
		Reservations: api.NewReservationHandler(reservationService),
		Availability: api.NewAvailabilityHandler(engine),
		Stats:        api.NewStatsHandler(counters, conversationRepo),
	}
	if err := bootstrap.Run(ctx, cfg, logger, handlers); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

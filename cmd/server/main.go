package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/feed"
	"github.com/Skotchmaster/shop_orders/internal/httpserver"
	"github.com/Skotchmaster/shop_orders/internal/lock"
	"github.com/Skotchmaster/shop_orders/internal/metrics"
	"github.com/Skotchmaster/shop_orders/internal/notify"
	"github.com/Skotchmaster/shop_orders/internal/repo"
	"github.com/Skotchmaster/shop_orders/internal/search"
	"github.com/Skotchmaster/shop_orders/internal/service"
	"github.com/Skotchmaster/shop_orders/pkg/config"
	"github.com/Skotchmaster/shop_orders/pkg/db"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/shop_orders/pkg/middleware/logging"
)

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel, cfg.Env, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	config.MustNonEmpty(log, cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(log, cfg.JWTAccessSecret, "JWT_SECRET")

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal("migrate_error", zap.Error(err))
		}
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(initCtx, cfg.DatabaseDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal("db_init_error", zap.Error(err))
	}

	locker, rdb := newLocker(cfg, log)
	indexer := newIndexer(cfg, log)
	dispatcher := newDispatcher(cfg, log)

	r := repo.New(gdb)

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(metrics.Middleware)
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(log))
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.Secure = cfg.CookieSecure
		e.Use(csrf.Middleware(csrfCfg))
	}

	httpserver.Register(e, &httpserver.Deps{
		DB:        gdb,
		JWTSecret: cfg.JWTAccessSecret,
		Catalog:   &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: r, Search: indexer}},
		Shop: &httpserver.ShopHTTP{
			Import: &service.ImportService{
				Repo:   r,
				Feeds:  feed.NewFetcher(cfg.FeedTimeout, cfg.FeedMaxBytes),
				Locks:  locker,
				Search: indexer,
			},
			Shops: &service.ShopService{Repo: r},
		},
		Basket: &httpserver.BasketHTTP{Svc: &service.BasketService{Repo: r}},
		Order: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo:        r,
			Dispatcher:  dispatcher,
			NotifyDelay: cfg.NotifyDelay,
		}},
		User: &httpserver.UserHTTP{
			Users:    &service.UserService{Repo: r},
			Contacts: &service.ContactService{Repo: r},
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      cfg.FeedTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		log.Info("server_start", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server_error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server_shutdown_error", zap.Error(err))
	}
	if err := dispatcher.Close(); err != nil {
		log.Error("dispatcher_close_error", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("redis_close_error", zap.Error(err))
		}
	}
	if err := db.Close(gdb); err != nil {
		log.Error("db_close_error", zap.Error(err))
	}

	log.Info("shutdown_complete")
}

// newLocker picks the Redis lease lock when REDIS_ADDR is set; a process-local
// lock is enough for a single replica.
func newLocker(cfg config.Config, log *zap.Logger) (lock.Locker, *redis.Client) {
	if cfg.RedisAddr == "" {
		log.Info("import_lock", zap.String("kind", "local"))
		return lock.NewLocal(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis_init_error", zap.Error(err))
	}
	log.Info("import_lock", zap.String("kind", "redis"), zap.String("addr", cfg.RedisAddr))
	return lock.NewRedis(rdb, cfg.ImportLockTTL, log), rdb
}

func newIndexer(cfg config.Config, log *zap.Logger) search.Indexer {
	if cfg.ESURL == "" {
		return search.Noop{}
	}
	client, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword, log)
	if err != nil {
		log.Fatal("es_init_error", zap.Error(err))
	}
	return search.NewElastic(client, cfg.ESIndex, log)
}

// newDispatcher publishes to Kafka when brokers are configured and otherwise
// delivers from in-process timers.
func newDispatcher(cfg config.Config, log *zap.Logger) notify.Dispatcher {
	if len(cfg.KafkaBrokers) > 0 {
		return notify.NewKafkaDispatcher(cfg.KafkaBrokers, cfg.NotifyTopic, log)
	}

	var mailer notify.Mailer = notify.LogMailer{Log: log}
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(smtpConfig(cfg))
	}
	log.Warn("notify_local_dispatcher", zap.String("reason", "KAFKA_BROKERS is empty"))
	return notify.NewLocalDispatcher(mailer, log)
}

func smtpConfig(cfg config.Config) notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		SSL:      cfg.SMTPSSL,
	}
}

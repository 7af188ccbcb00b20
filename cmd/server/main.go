// Command server runs the arXiv admin console API: the audit log read and
// write endpoints, backed by postgres, with optional redis identity caching
// and Kafka fan-out of recorded events.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/arXiv/arxiv-admin-console-sub000/internal/admin"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/admin/handler"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/audit/publish"
	auditpg "github.com/arXiv/arxiv-admin-console-sub000/internal/audit/store/postgres"
	httpapi "github.com/arXiv/arxiv-admin-console-sub000/internal/http"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/platform/config"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/platform/httpserver"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/platform/kafka"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/platform/logger"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/platform/metrics"
	platformredis "github.com/arXiv/arxiv-admin-console-sub000/internal/platform/redis"
	"github.com/arXiv/arxiv-admin-console-sub000/internal/user"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("open database failed", "error", err)
		return err
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("database unreachable", "error", err)
		return err
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var resolver audit.Resolver = user.NewPostgresStore(db)
	if redisClient != nil {
		resolver = user.NewCachedResolver(resolver, redisClient.Client, cfg.ResolverCacheTTL, log)
	}

	m := metrics.New()
	store := auditpg.New(db)

	serviceOpts := []admin.Option{admin.WithMetrics(m)}

	var publisher *publish.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("kafka producer setup failed", "error", err)
			return err
		}
		defer producer.Close()
		publisher = publish.New(producer, log)
		metrics.ObservePublisherDropped(publisher.Dropped)
		serviceOpts = append(serviceOpts, admin.WithPublisher(publisher))
	}

	service, err := admin.NewService(store, resolver, log, serviceOpts...)
	if err != nil {
		log.Error("service setup failed", "error", err)
		return err
	}

	h := handler.New(service, log, cfg.AuditListLimit)
	router := httpapi.NewRouter(h, []byte(cfg.AdminJWTSecret), func(r *http.Request) error {
		return db.PingContext(r.Context())
	})
	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("admin console listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if publisher != nil {
		group.Go(func() error {
			if err := publisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		return err
	}
	log.Info("shutdown complete")
	return nil
}

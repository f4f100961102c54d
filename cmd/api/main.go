package main

import (
	"context"
	"database/sql"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"

	server "review_scraper/internal/adapters/http_server"
	"review_scraper/internal/adapters/observability"
	redisad "review_scraper/internal/adapters/redis"
	"review_scraper/internal/app"
	"review_scraper/internal/domain"
	"review_scraper/internal/shared"
	"review_scraper/internal/storage/csvfile"
	mysqlrepo "review_scraper/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// console in dev, JSON otherwise; the API keeps no run log file
	log, _, err := observability.NewLogger(cfg.AppEnv, "")
	if err != nil {
		stdlog.Fatal(err)
	}

	// read side: MySQL when configured, else the scraper's CSV output
	var repo domain.ReviewRepository
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		repo = mysqlrepo.New(db)
	} else {
		log.Info().Str("dir", cfg.OutputDir).Msg("serving reviews from csv output")
		repo = csvfile.NewRepo(cfg.OutputDir)
	}

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, serving without cache")
		} else {
			cache = rc
		}
	}
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New(log)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Log: log})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

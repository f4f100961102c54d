package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"review_scraper/internal/adapters/browser"
	"review_scraper/internal/adapters/observability"
	redisad "review_scraper/internal/adapters/redis"
	"review_scraper/internal/app"
	"review_scraper/internal/domain"
	"review_scraper/internal/shared"
	"review_scraper/internal/storage/csvfile"
	mysqlrepo "review_scraper/internal/storage/mysql"
	"review_scraper/internal/storage/xlsx"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := shared.Load()

	cmd := &cobra.Command{
		Use:           "scraper [--term <search term>]",
		Short:         "Scrapes the reviews of every product listed for a search term.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("out") && os.Getenv("LOG_DIR") == "" {
				cfg.LogDir = filepath.Join(cfg.OutputDir, "logs")
			}
			return run(cmd.Context(), cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.SearchTerm, "term", cfg.SearchTerm, "search term typed into the shop's search box")
	f.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "directory the review table is written to")
	f.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "output format: csv, xlsx or both")
	f.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "shop home page")
	f.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run Chrome without a window")
	f.IntVar(&cfg.MaxProducts, "max-products", cfg.MaxProducts, "visit at most this many listed products (0 = all)")
	return cmd
}

func run(ctx context.Context, cfg shared.Config) error {
	log, closer, err := observability.NewLogger(cfg.AppEnv, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}
	log.Info().
		Str("term", cfg.SearchTerm).
		Str("base", cfg.BaseURL).
		Str("out", cfg.OutputDir).
		Str("format", cfg.OutputFormat).
		Msg("scraper starting")

	reg := observability.InitRegistry()

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, running without checkpoints")
		} else {
			cache = rc
		}
	}

	var repo domain.ReviewRepository
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return fmt.Errorf("sql.Open: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error().Err(err).Msg("db.Ping failed")
			return err
		}
		log.Info().Msg("database connection ok")
		repo = mysqlrepo.New(db)
	}

	sess, err := browser.New(ctx, browser.Options{
		Headless:         cfg.Headless,
		ExecPath:         cfg.ChromePath,
		NavTimeout:       cfg.NavTimeout,
		ActionsPerSecond: cfg.ActionsPerSecond,
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("browser start failed")
		return err
	}
	defer sess.Close()

	sels := app.DefaultSelectors()
	cp := app.NewCheckpoints(cache, cfg.CheckpointTTL, log)
	scraper := app.NewScrapeService(
		sess,
		sels,
		app.NewExpander(sess, sels.LoadMore, cfg.MaxLoadMore, cfg.LoadMoreSettle, log),
		cp,
		app.ScrapeConfig{
			BaseURL:     cfg.BaseURL,
			SearchWait:  cfg.SearchWait,
			ElementWait: cfg.ElementWait,
			MaxProducts: cfg.MaxProducts,
		},
		log,
	)

	var queries *app.QueryService
	if cache != nil {
		queries = app.NewQueryService(repo, cache, cfg.CacheTTL)
	}
	persist := app.NewPersistService(writers(cfg, log), repo, queries, cp, log)

	g, gctx := errgroup.WithContext(ctx)
	metricsCtx, stopMetrics := context.WithCancel(gctx)

	g.Go(func() error {
		if err := observability.Serve(metricsCtx, cfg.MetricsAddr, reg, log); err != nil {
			log.Warn().Err(err).Msg("metrics server stopped")
		}
		return nil
	})
	g.Go(func() error {
		defer stopMetrics()
		start := time.Now()
		table, err := scraper.Run(gctx, cfg.SearchTerm)
		if err != nil {
			log.Error().Err(err).Msg("scrape failed")
			return err
		}
		if err := persist.Persist(gctx, cfg.SearchTerm, table); err != nil {
			log.Error().Err(err).Msg("persist failed")
			return err
		}
		log.Info().
			Int("records", len(table)).
			Dur("took", time.Since(start)).
			Msg("scrape completed")
		return nil
	})
	return g.Wait()
}

func writers(cfg shared.Config, log zerolog.Logger) []domain.TableWriter {
	switch cfg.OutputFormat {
	case "xlsx":
		return []domain.TableWriter{xlsx.NewWriter(cfg.OutputDir, log)}
	case "both":
		return []domain.TableWriter{csvfile.NewWriter(cfg.OutputDir, log), xlsx.NewWriter(cfg.OutputDir, log)}
	}
	return []domain.TableWriter{csvfile.NewWriter(cfg.OutputDir, log)}
}

package shared

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const DefaultSearchTerm = "koelkast"

type Config struct {
	AppEnv       string
	BaseURL      string
	SearchTerm   string
	OutputDir    string
	OutputFormat string // csv|xlsx|both
	LogDir       string

	Headless         bool
	ChromePath       string
	NavTimeout       time.Duration
	SearchWait       time.Duration
	ElementWait      time.Duration
	MaxLoadMore      int
	LoadMoreSettle   time.Duration
	ActionsPerSecond int
	MaxProducts      int

	MySQLDSN      string // empty: no database sink
	RedisAddr     string // empty: no cache, no checkpoints
	RedisPass     string
	RedisDB       int
	HTTPAddr      string
	MetricsAddr   string
	CacheTTL      time.Duration
	CheckpointTTL time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	secs := func(k string, def int) time.Duration { return time.Duration(atoi(k, def)) * time.Second }

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	out := env("OUTPUT_DIR", filepath.Join(wd, "output"))

	return Config{
		AppEnv:       env("APP_ENV", "prod"),
		BaseURL:      env("BASE_URL", "https://www.bol.com/nl/"),
		SearchTerm:   env("SEARCH_TERM", DefaultSearchTerm),
		OutputDir:    out,
		OutputFormat: strings.ToLower(env("OUTPUT_FORMAT", "csv")),
		LogDir:       env("LOG_DIR", filepath.Join(out, "logs")),

		Headless:         envBool("HEADLESS", true),
		ChromePath:       env("CHROME_PATH", ""),
		NavTimeout:       secs("NAV_TIMEOUT_SECONDS", 30),
		SearchWait:       secs("SEARCH_WAIT_SECONDS", 2),
		ElementWait:      secs("ELEMENT_WAIT_SECONDS", 10),
		MaxLoadMore:      atoi("MAX_LOAD_MORE", 500),
		LoadMoreSettle:   time.Duration(atoi("LOAD_MORE_SETTLE_MS", 750)) * time.Millisecond,
		ActionsPerSecond: atoi("ACTIONS_PER_SECOND", 5),
		MaxProducts:      atoi("MAX_PRODUCTS", 0),

		MySQLDSN:      env("MYSQL_DSN", ""),
		RedisAddr:     env("REDIS_ADDR", ""),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		CacheTTL:      secs("CACHE_TTL_SECONDS", 900),
		CheckpointTTL: secs("CHECKPOINT_TTL_SECONDS", 86400),
	}
}

// Validate reports settings the scraper cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SearchTerm) == "" {
		errs = append(errs, errors.New("search term is empty"))
	}
	if strings.ContainsAny(c.SearchTerm, `/\`) {
		errs = append(errs, fmt.Errorf("search term %q cannot be used in a file name", c.SearchTerm))
	}
	switch c.OutputFormat {
	case "csv", "xlsx", "both":
	default:
		errs = append(errs, fmt.Errorf("OUTPUT_FORMAT %q: want csv, xlsx or both", c.OutputFormat))
	}
	if c.MaxProducts < 0 {
		errs = append(errs, errors.New("MAX_PRODUCTS must not be negative"))
	}
	return errors.Join(errs...)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

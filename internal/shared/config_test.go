package shared_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"review_scraper/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SEARCH_TERM", "OUTPUT_DIR", "LOG_DIR", "OUTPUT_FORMAT", "HEADLESS", "MYSQL_DSN", "REDIS_ADDR", "MAX_LOAD_MORE"} {
		t.Setenv(k, "")
	}
	c := shared.Load()

	require.Equal(t, "koelkast", c.SearchTerm)
	require.Equal(t, "output", filepath.Base(c.OutputDir))
	require.Equal(t, filepath.Join(c.OutputDir, "logs"), c.LogDir)
	require.Equal(t, "csv", c.OutputFormat)
	require.True(t, c.Headless)
	require.Empty(t, c.MySQLDSN)
	require.Empty(t, c.RedisAddr)
	require.Equal(t, 500, c.MaxLoadMore)
	require.Equal(t, 2*time.Second, c.SearchWait)
	require.NoError(t, c.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOG_DIR", "")
	t.Setenv("SEARCH_TERM", "wasmachine")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("HEADLESS", "false")
	t.Setenv("LOAD_MORE_SETTLE_MS", "100")
	t.Setenv("MAX_PRODUCTS", "not-a-number")

	c := shared.Load()
	require.Equal(t, "wasmachine", c.SearchTerm)
	require.Equal(t, "/tmp/out/logs", c.LogDir)
	require.False(t, c.Headless)
	require.Equal(t, 100*time.Millisecond, c.LoadMoreSettle)
	require.Zero(t, c.MaxProducts)
}

func TestValidate(t *testing.T) {
	c := shared.Load()
	c.SearchTerm = "a/b"
	c.OutputFormat = "parquet"
	err := c.Validate()
	require.ErrorContains(t, err, "file name")
	require.ErrorContains(t, err, "OUTPUT_FORMAT")
}

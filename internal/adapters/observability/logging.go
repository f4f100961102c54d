package observability

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog Logger.
// APP_ENV=dev (or development) uses a human-friendly console writer.
// When logDir is set every run also appends to its own timestamped file there;
// the returned closer releases it.
func NewLogger(env, logDir string) (zerolog.Logger, io.Closer, error) {
	var console io.Writer = os.Stdout
	if env == "dev" || env == "development" {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if logDir == "" {
		return zerolog.New(console).With().Timestamp().Logger(), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return zerolog.Logger{}, nil, err
	}
	f, err := os.OpenFile(
		filepath.Join(logDir, RunLogName(time.Now())),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644,
	)
	if err != nil {
		return zerolog.Logger{}, nil, err
	}
	w := zerolog.MultiLevelWriter(console, f)
	return zerolog.New(w).With().Timestamp().Logger(), f, nil
}

// RunLogName is the file name of the log of a run started at t.
func RunLogName(t time.Time) string {
	return t.Format("2006-01-02-15-04-05") + ".log"
}

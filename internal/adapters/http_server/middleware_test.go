package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	httpserver "review_scraper/internal/adapters/http_server"
)

func TestInstrument_LogsRouteStatusAndLevel(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		wantLevel string
	}{
		{"ok", http.StatusOK, "info"},
		{"nothing written", 0, "info"},
		{"client error", http.StatusNotFound, "warn"},
		{"server error", http.StatusInternalServerError, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := chi.NewRouter()
			r.Use(httpserver.Instrument(zerolog.New(&buf)))
			r.Get("/v1/reviews/{term}", func(w http.ResponseWriter, _ *http.Request) {
				if tc.status != 0 {
					w.WriteHeader(tc.status)
					_, _ = w.Write([]byte("body"))
				}
			})

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/v1/reviews/koelkast", nil))

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			want := tc.status
			if want == 0 {
				want = http.StatusOK
			}
			require.Equal(t, tc.wantLevel, line["level"])
			require.Equal(t, "/v1/reviews/{term}", line["route"])
			require.EqualValues(t, want, line["status"])
			require.Equal(t, "http_request", line["message"])
		})
	}
}

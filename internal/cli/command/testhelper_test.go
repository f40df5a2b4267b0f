package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
)

// isolate points the CLI at a config file and history file that exist only
// for this test.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RESPKV_CLI_CONFIG", filepath.Join(dir, "missing.yaml"))
	t.Setenv("RESPKV_CLI_HISTORY_FILE", filepath.Join(dir, "history"))
}

// runApp runs the CLI with stdin and returns everything written to stdout.
func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = out
	app.ErrWriter = &bytes.Buffer{}

	err := app.Run(append([]string{"respkv-cli"}, args...))
	return out.String(), err
}

// startServer starts a RESP server on a random port.
func startServer(t *testing.T) string {
	t.Helper()
	srv := redisserver.New(&redisserver.Config{Addr: "127.0.0.1:0"}, memory.New(memory.WithShards(4)))
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// newAdminServer serves a fixed status code and body on every path.
func newAdminServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

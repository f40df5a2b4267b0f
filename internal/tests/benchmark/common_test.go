package benchmark

import (
	"context"
	"crypto/rand"
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/pkg/resp"
)

// KeyCounts defines the keyspace sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 100000, 500000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000}

// newKey generates a unique, roughly time-ordered key.
func newKey() string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)
	return "bench:" + strings.ToLower(id.String())
}

// prefillStore fills a store with count string keys and returns them.
func prefillStore(ctx context.Context, store *memory.Store, count int) []string {
	keys := make([]string, count)
	for i := range keys {
		keys[i] = newKey()
		store.Set(ctx, keys[i], resp.BulkString(fmt.Sprintf("value-%d", i)))
	}
	return keys
}

// startServer starts a RESP server on a random port for the benchmark.
func startServer(b *testing.B, store *memory.Store) string {
	b.Helper()
	srv := redisserver.New(&redisserver.Config{Addr: "127.0.0.1:0"}, store)
	if err := srv.Start(context.Background()); err != nil {
		b.Fatalf("Start: %v", err)
	}
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// reportMemory reports heap usage after a forced GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various keyspace sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}

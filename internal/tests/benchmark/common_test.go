package benchmark

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/respkv-go/internal/server/redisserver"
	"github.com/yndnr/respkv-go/internal/storage/memory"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{10000, 100000, 1000000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000, 100000}

// ValueSizes defines the value lengths in bytes.
var ValueSizes = []int{16, 1024, 64 * 1024}

func benchKey(i int) string {
	return fmt.Sprintf("key:%08d", i)
}

func benchValue(size int) string {
	return strings.Repeat("v", size)
}

// prefillStore prefills a store with count keys.
func prefillStore(store *memory.Store, count int) []string {
	keys := make([]string, count)
	for i := 0; i < count; i++ {
		keys[i] = benchKey(i)
		store.Set(keys[i], benchValue(16))
	}
	return keys
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various store sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}

// startServer runs a server on a loopback port until the benchmark ends.
func startServer(b *testing.B, store *memory.Store) string {
	b.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		b.Fatalf("listen: %v", err)
	}

	srv := redisserver.New(nil, store, nil, nil)
	go func() { _ = srv.Serve(context.Background(), ln) }()

	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return ln.Addr().String()
}

func newClient(b *testing.B, addr string, poolSize int) *redis.Client {
	b.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Protocol:        2,
		DisableIdentity: true,
		PoolSize:        poolSize,
	})
	b.Cleanup(func() { _ = client.Close() })
	return client
}

package metric

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}

	mfs, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(mfs) == 0 {
		t.Error("expected runtime metrics to be registered")
	}
}

func TestRegistry_ObserveCommand(t *testing.T) {
	r := NewRegistry()
	r.ObserveCommand("GET", time.Millisecond)
	r.ObserveCommand("GET", time.Millisecond)
	r.ObserveCommand("SET", time.Millisecond)

	if got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues("GET")); got != 2 {
		t.Errorf("GET count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues("SET")); got != 1 {
		t.Errorf("SET count = %v, want 1", got)
	}
}

func TestRegistry_Connections(t *testing.T) {
	r := NewRegistry()
	r.ConnectionsTotal.Inc()
	r.ConnectionsActive.Inc()
	r.ConnectionsActive.Inc()
	r.ConnectionsActive.Dec()

	if got := testutil.ToFloat64(r.ConnectionsActive); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.ConnectionsTotal); got != 1 {
		t.Errorf("total = %v, want 1", got)
	}
}

func TestRegistry_RegisterKeyCount(t *testing.T) {
	r := NewRegistry()
	n := 0
	r.RegisterKeyCount(func() int { return n })
	n = 7

	expected := `
# HELP respkv_keys Number of keys in the store.
# TYPE respkv_keys gauge
respkv_keys 7
`
	if err := testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), "respkv_keys"); err != nil {
		t.Error(err)
	}
}

func TestRegistry_RegisterBuildInfo(t *testing.T) {
	r := NewRegistry()
	r.RegisterBuildInfo("v1.0.0", "abc123", "go1.24.0")

	expected := `
# HELP respkv_build_info Build information of the running binary.
# TYPE respkv_build_info gauge
respkv_build_info{commit="abc123",go_version="go1.24.0",version="v1.0.0"} 1
`
	if err := testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), "respkv_build_info"); err != nil {
		t.Error(err)
	}
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.ProtocolErrors.WithLabelValues("malformed").Inc()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `respkv_protocol_errors_total{reason="malformed"} 1`) {
		t.Errorf("metrics body missing protocol error counter:\n%s", rec.Body.String())
	}
}

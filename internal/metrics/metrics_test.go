package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "test")

	m.LoginsTotal.WithLabelValues(ResultSuccess).Inc()
	m.RefreshesTotal.WithLabelValues("timer", ResultFailure).Inc()
	m.SessionAuthenticated.Set(1)

	if got := testutil.ToFloat64(m.LoginsTotal.WithLabelValues(ResultSuccess)); got != 1 {
		t.Errorf("logins success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SessionAuthenticated); got != 1 {
		t.Errorf("authenticated = %v, want 1", got)
	}

	n, err := testutil.GatherAndCount(reg, "test_session_logins_total", "test_session_refreshes_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Errorf("series count = %d, want 2", n)
	}
}

func TestInstancesDoNotCollide(t *testing.T) {
	a := NewNop()
	b := NewNop()
	a.LogoutsTotal.WithLabelValues("explicit").Inc()
	if got := testutil.ToFloat64(b.LogoutsTotal.WithLabelValues("explicit")); got != 0 {
		t.Errorf("second instance saw %v, want 0", got)
	}
}

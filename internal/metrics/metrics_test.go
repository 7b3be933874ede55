package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		ObserveHTTP("/search", 200, 15*time.Millisecond)
		ObserveBackend("businesses", "ok", 40*time.Millisecond)
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(sessionTransitions.WithLabelValues("partner", "session_expired"))
	IncSession("partner", "session_expired")
	IncSession("partner", "session_expired")
	after := testutil.ToFloat64(sessionTransitions.WithLabelValues("partner", "session_expired"))
	assert.Equal(t, before+2, after)

	before = testutil.ToFloat64(guardDecisions.WithLabelValues("customer", "redirect"))
	IncGuard("customer", "redirect")
	assert.Equal(t, before+1, testutil.ToFloat64(guardDecisions.WithLabelValues("customer", "redirect")))
}

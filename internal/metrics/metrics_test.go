package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Message(OutcomeSensor)
	m.Message(OutcomeSensor)
	m.Message(OutcomeMalformed)
	m.ReadingPersisted(5 * time.Millisecond)
	m.ReadingSkipped()
	m.ReadingSkipped()
	m.ReadingFailed()
	m.Command(CommandQueued)
	m.Command(CommandCoalesced)
	m.ChannelValue("power", 512.5)
	m.SwitchState(1)
	m.TransportConnected(true)

	if got := testutil.ToFloat64(m.messages.WithLabelValues(OutcomeSensor)); got != 2 {
		t.Fatalf("sensor messages = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.messages.WithLabelValues(OutcomeMalformed)); got != 1 {
		t.Fatalf("malformed messages = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.readingsPersisted); got != 1 {
		t.Fatalf("persisted = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.readingsSkipped); got != 2 {
		t.Fatalf("skipped = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.readingsFailed); got != 1 {
		t.Fatalf("failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.commands.WithLabelValues(CommandCoalesced)); got != 1 {
		t.Fatalf("coalesced = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.channelValue.WithLabelValues("power")); got != 512.5 {
		t.Fatalf("power gauge = %v, want 512.5", got)
	}
	if got := testutil.ToFloat64(m.switchState); got != 1 {
		t.Fatalf("switch gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.transportUp); got != 1 {
		t.Fatalf("transport gauge = %v, want 1", got)
	}
	m.TransportConnected(false)
	if got := testutil.ToFloat64(m.transportUp); got != 0 {
		t.Fatalf("transport gauge after disconnect = %v, want 0", got)
	}
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	m.Message(OutcomeSensor)
	m.ReadingPersisted(time.Second)
	m.ReadingSkipped()
	m.ReadingFailed()
	m.Command(CommandPublished)
	m.ChannelValue("voltage", 1)
	m.SwitchState(0)
	m.TransportConnected(true)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("nil metrics handler status = %d", w.Code)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Command(CommandPublished)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `power_switch_commands_total{stage="published"} 1`) {
		t.Fatalf("metric missing from exposition:\n%s", w.Body.String())
	}
}

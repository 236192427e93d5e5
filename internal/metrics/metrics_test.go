package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorsUsable(t *testing.T) {
	ActiveConnections.Inc()
	ActiveConnections.Dec()

	PacketsReceived.WithLabelValues("chat").Inc()
	if v := testutil.ToFloat64(PacketsReceived.WithLabelValues("chat")); v < 1 {
		t.Errorf("packets_received_total = %v, want >= 1", v)
	}

	IdentityRequests.WithLabelValues("me", "ok").Inc()
	if v := testutil.ToFloat64(IdentityRequests.WithLabelValues("me", "ok")); v < 1 {
		t.Errorf("identity_requests_total = %v, want >= 1", v)
	}

	DroppedSends.Inc()
	if v := testutil.ToFloat64(DroppedSends); v < 1 {
		t.Errorf("sends_dropped_total = %v, want >= 1", v)
	}
}

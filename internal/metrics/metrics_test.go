package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/erazemk/dijaskidom/internal/model"
)

func TestObserveOperation(t *testing.T) {
	m := New()

	m.ObserveOperation(model.TxAssign, "ok", 4)
	m.ObserveOperation(model.TxAssign, "ok", 3)
	m.ObserveOperation(model.TxAssign, "insufficient", 40)

	if got := testutil.ToFloat64(m.ledgerOps.WithLabelValues("assign", "ok")); got != 2 {
		t.Errorf("expected 2 ok assigns, got %v", got)
	}
	if got := testutil.ToFloat64(m.ledgerOps.WithLabelValues("assign", "insufficient")); got != 1 {
		t.Errorf("expected 1 rejected assign, got %v", got)
	}
	if got := testutil.ToFloat64(m.ledgerQuantity.WithLabelValues("assign")); got != 7 {
		t.Errorf("expected 7 units, got %v", got)
	}
}

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest(http.MethodPost, "POST /api/ledger/receive", http.StatusCreated, 20*time.Millisecond)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "POST /api/ledger/receive", "201")); got != 1 {
		t.Errorf("expected 1 request, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveOperation(model.TxReceive, "ok", 50)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `dijaskidom_ledger_quantity_total{type="receive"} 50`) {
		t.Errorf("expected receive quantity in output:\n%s", body)
	}
	if !strings.Contains(body, `dijaskidom_ledger_operations_total{outcome="ok",type="demolish_room"} 0`) {
		t.Error("expected pre-created zero series")
	}
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPrometheusExporter(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())

	t.Run("RecordTurn", func(t *testing.T) {
		exporter.RecordTurn("INIT", 5*time.Millisecond, true)
		exporter.RecordTurn("REFINEMENT", 10*time.Millisecond, true)
		exporter.RecordTurn("REFINEMENT", 2*time.Millisecond, false)
	})

	t.Run("RecordCommand", func(t *testing.T) {
		exporter.RecordCommand("budget.edit", "executed")
		exporter.RecordCommand("placement.add", "gated")
		exporter.RecordCommand("forecast.run", "error")
	})

	t.Run("RecordIntent", func(t *testing.T) {
		exporter.RecordIntent("PLANNING")
		exporter.RecordIntent("UNKNOWN")
	})

	t.Run("Sessions", func(t *testing.T) {
		exporter.SessionOpened()
		exporter.SessionOpened()
		exporter.SessionClosed()
	})

	t.Run("PlansAndEscalations", func(t *testing.T) {
		exporter.RecordPlanCreated("BALANCED")
		exporter.RecordPlanCreated("")
		exporter.RecordEscalation()
	})
}

func TestPrometheusExporterHandler(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())

	exporter.RecordTurn("INIT", 5*time.Millisecond, true)
	exporter.RecordCommand("budget.edit", "executed")
	exporter.RecordPlanCreated("DIGITAL")

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, metric := range []string{
		"planwise_agent_turns_total",
		"planwise_agent_commands_total",
		"planwise_agent_plans_created_total",
	} {
		if !strings.Contains(string(body), metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
}

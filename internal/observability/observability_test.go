package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewLoggerProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "info")
	logger.Info("stage finished", "stage", "net_worth")

	out := buf.String()
	if !strings.Contains(out, `"msg":"stage finished"`) || !strings.Contains(out, `"stage":"net_worth"`) {
		t.Fatalf("expected json log line, got %s", out)
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "local", "warn")
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPipelineMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPipelineMetrics(reg)

	m.ObserveStage("ledger_aggregation", 10*time.Millisecond, nil)
	m.ObserveStage("ledger_aggregation", 10*time.Millisecond, errors.New("boom"))
	m.AddFolded(7, 2)
	m.AddFolded(0, 0)

	if got := testutil.ToFloat64(m.stageRuns.WithLabelValues("ledger_aggregation", "success")); got != 1 {
		t.Fatalf("expected 1 success run, got %v", got)
	}
	if got := testutil.ToFloat64(m.stageRuns.WithLabelValues("ledger_aggregation", "failure")); got != 1 {
		t.Fatalf("expected 1 failed run, got %v", got)
	}
	if got := testutil.ToFloat64(m.transactionsFolded); got != 7 {
		t.Fatalf("expected 7 folded rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.unmatchedAccounts); got != 2 {
		t.Fatalf("expected 2 unmatched accounts, got %v", got)
	}
}

func TestNilPipelineMetricsIsNoop(t *testing.T) {
	var m *PipelineMetrics
	m.ObserveStage("x", time.Second, nil)
	m.AddFolded(1, 1)
}

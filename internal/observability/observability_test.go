package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace"
)

func TestClassifyDBErr(t *testing.T) {
	cases := map[string]error{
		"unique_violation": &pgconn.PgError{Code: "23505"},
		"check_violation":  &pgconn.PgError{Code: "23514"},
		"pg_42P01":         &pgconn.PgError{Code: "42P01"},
		"timeout":          fmt.Errorf("list hives: %w", context.DeadlineExceeded),
		"no_rows":          pgx.ErrNoRows,
		"connection":       errors.New("failed to connect: connection refused"),
		"unknown":          errors.New("boom"),
	}

	for want, err := range cases {
		if got := ClassifyDBErr(err); got != want {
			t.Fatalf("ClassifyDBErr(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestObserveDB_CountsErrors(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = p.ObserveDB("users.get_by_email", func() error { return nil })
	_ = p.ObserveDB("users.get_by_email", func() error { return &pgconn.PgError{Code: "23505"} })

	got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.get_by_email", "unique_violation"))
	if got != 1 {
		t.Fatalf("expected 1 unique_violation, got %v", got)
	}
}

func TestNilPromIsSafe(t *testing.T) {
	var p *Prom

	p.ObserveAuthFailure("middleware", "expired")
	p.AddReminders(3)
	p.AddBroadcastRecipients(2)

	called := false
	if err := p.ObserveDB("op", func() error { called = true; return nil }); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !called {
		t.Fatalf("expected fn to run")
	}
}

func TestLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "dev")

	log.DebugContext(context.Background(), "hello", "user_id", 7)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if rec["msg"] != "hello" {
		t.Fatalf("unexpected msg: %v", rec["msg"])
	}
	if _, ok := rec["trace_id"]; ok {
		t.Fatalf("trace_id must be absent without a span")
	}
	if rec["service"] != "hivelog" || rec["env"] != "dev" {
		t.Fatalf("missing service attrs: %v", rec)
	}
}

func TestLogger_AddsSpanIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	log.DebugContext(ctx, "hidden outside dev")
	log.WarnContext(ctx, "reminder lock busy")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if rec["trace_id"] != traceID.String() || rec["span_id"] != spanID.String() {
		t.Fatalf("unexpected ids: %v", rec)
	}
}

func TestObserveDB_NoRowsIsNotAnError(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	_ = p.ObserveDB("hives.get_by_id", func() error { return pgx.ErrNoRows })

	if got := testutil.CollectAndCount(p.DbErrorsTotal); got != 0 {
		t.Fatalf("expected no error series, got %d", got)
	}
}

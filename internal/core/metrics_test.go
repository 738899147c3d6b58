package core

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestExpvarRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	rec.ObserveMutation("task_create", nil, 5*time.Millisecond)
	rec.ObserveMutation("task_create", fmt.Errorf("boom"), 2*time.Millisecond)
	rec.ObservePersist("task_create", nil, 7*time.Millisecond)
	rec.ObserveRollback("task_create")

	snap := rec.Snapshot()
	if got := snap.Results["mutation:task_create"]["success"]; got != 1 {
		t.Fatalf("expected one success, got %d", got)
	}
	if got := snap.Results["mutation:task_create"]["error"]; got != 1 {
		t.Fatalf("expected one error, got %d", got)
	}
	if got := snap.Results["persist:task_create"]["success"]; got != 1 {
		t.Fatalf("expected one persist success, got %d", got)
	}
	if got := snap.Rollbacks["task_create"]; got != 1 {
		t.Fatalf("expected one rollback, got %d", got)
	}
	if snap.DurationsMS["mutation:task_create"] <= 0 {
		t.Fatalf("expected accumulated duration, got %v", snap.DurationsMS)
	}
}

func TestExpvarRecorderIgnoresEmptyOperation(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	rec.ObserveMutation("", nil, time.Millisecond)
	rec.ObserveRollback("")
	snap := rec.Snapshot()
	if len(snap.Results) != 0 || len(snap.Rollbacks) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "staff_create")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "staff_create_persist")
	span.End(fmt.Errorf("remote down"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Status != "success" || entries[1].Status != "error" {
		t.Fatalf("unexpected statuses: %+v", entries)
	}
	if entries[1].Error != "remote down" {
		t.Fatalf("expected error message, got %q", entries[1].Error)
	}
	if !strings.Contains(buf.String(), `"operation":"staff_create"`) {
		t.Fatalf("expected encoded span, got %s", buf.String())
	}
}

func TestStoreEmitsTraceSpans(t *testing.T) {
	env := newTestEnv(t)
	tracer := NewJSONTracer(nil)
	env.store.tracer = tracer

	env.seedAdmin(t)
	env.store.Flush()

	var ops []string
	for _, e := range tracer.Entries() {
		ops = append(ops, e.Operation)
	}
	if !containsString(ops, "staff_create") || !containsString(ops, "staff_create_persist") {
		t.Fatalf("expected commit and persist spans, got %v", ops)
	}
}

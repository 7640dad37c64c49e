package goGuard

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func newAuditEngine(t *testing.T, cfg Config, sink AuditSink) *Engine {
	t.Helper()

	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithRoleResolver(&mapRoleResolver{roles: map[string]string{"u1": "USER"}}).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	cfg := lifecycleTestConfig()
	cfg.Audit.Enabled = false

	sink := &countingSink{}
	engine := newAuditEngine(t, cfg, sink)

	if _, err := engine.IssuePair(context.Background(), "u1"); err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	engine.Close()
	if got := sink.Count(); got != 0 {
		t.Fatalf("expected no sink calls with audit disabled, got %d", got)
	}
}

func TestAuditDeliversLifecycleEvents(t *testing.T) {
	cfg := lifecycleTestConfig()
	cfg.Audit.Enabled = true

	sink := NewChannelSink(32)
	engine := newAuditEngine(t, cfg, sink)
	ctx := context.Background()

	pair, err := engine.IssuePair(ctx, "u1")
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	if _, err := engine.Validate(ctx, pair.AccessToken, PurposeAccess); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if _, err := engine.Validate(ctx, "garbage", PurposeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if err := engine.RevokeAll(ctx, "u1"); err != nil {
		t.Fatalf("RevokeAll failed: %v", err)
	}

	engine.Close()

	// Close drains the dispatcher, so everything is already buffered.
	seen := map[string]int{}
collect:
	for {
		select {
		case event := <-sink.Events():
			seen[event.EventType]++
		default:
			break collect
		}
	}

	if seen[AuditTokenIssued] != 1 {
		t.Fatalf("issued events = %d, want 1", seen[AuditTokenIssued])
	}
	if seen[AuditTokenValidated] != 1 {
		t.Fatalf("validated failure events = %d, want 1", seen[AuditTokenValidated])
	}
	if seen[AuditTokenRevoked] != 1 {
		t.Fatalf("revoked events = %d, want 1", seen[AuditTokenRevoked])
	}
}

func TestAuditDropIfFullCountsDrops(t *testing.T) {
	cfg := defaultConfig()
	cfg.Audit = AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}

	sink := newGateSink()
	d := newAuditDispatcher(cfg.Audit, sink)

	// First event is picked up by the worker and blocks in the sink; the
	// second fills the buffer; the rest must drop.
	for i := 0; i < 6; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: AuditTokenIssued})
	}

	deadline := time.Now().Add(2 * time.Second)
	for d.Dropped() < 4 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := d.Dropped(); got < 4 {
		t.Fatalf("dropped = %d, want >= 4", got)
	}

	close(sink.gate)
	d.Close()
}

func TestAuditCloseDrainsQueuedEvents(t *testing.T) {
	cfg := AuditConfig{
		Enabled:    true,
		BufferSize: 64,
		DropIfFull: false,
	}

	sink := &countingSink{}
	d := newAuditDispatcher(cfg, sink)

	const events = 32
	for i := 0; i < events; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: AuditTokenValidated})
	}

	d.Close()

	if got := sink.Count(); got != events {
		t.Fatalf("delivered = %d, want %d", got, events)
	}
}

func TestAuditEmitAfterCloseIsNoOp(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4}, sink)

	d.Close()
	d.Emit(context.Background(), AuditEvent{EventType: AuditTokenIssued})

	if got := sink.Count(); got != 0 {
		t.Fatalf("delivered = %d, want 0", got)
	}
}

func TestJSONWriterSinkWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Unix(100, 0).UTC(),
		EventType: AuditTokenIssued,
		UserID:    "u1",
		Success:   true,
	})
	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Unix(101, 0).UTC(),
		EventType: AuditRateLimited,
		Reason:    "capacity_exhausted",
	})

	scanner := bufio.NewScanner(&buf)
	var lines int
	for scanner.Scan() {
		lines++
		var event AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
	}
	if lines != 2 {
		t.Fatalf("wrote %d lines, want 2", lines)
	}
}

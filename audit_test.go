package accountkit

import (
	"context"
	"encoding/json"
	"strings"
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

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{gate: make(chan struct{})}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func TestAuditDisabledDispatcherIsNil(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when audit is disabled")
	}

	// Emitting through a nil dispatcher must be a safe no-op.
	d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginSuccess})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestAuditDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8}, sink)

	d.Emit(context.Background(), AuditEvent{
		EventType: auditEventLoginSuccess,
		AccountID: "acct-1",
		Success:   true,
	})

	select {
	case event := <-sink.Events():
		if event.EventType != auditEventLoginSuccess || event.AccountID != "acct-1" || !event.Success {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for audit event")
	}

	d.Close()
}

func TestAuditCloseDrainsBuffer(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 64}, sink)

	const events = 32
	for i := 0; i < events; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventRegisterSuccess})
	}
	d.Close()

	if got := sink.count.Load(); got != events {
		t.Fatalf("sink saw %d events after close, want %d", got, events)
	}
}

func TestAuditDropIfFull(t *testing.T) {
	sink := newGateSink()
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer; everything
	// after that drops.
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginFailure})
	}

	deadline := time.Now().Add(time.Second)
	for d.Dropped() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected drops with a full buffer")
		}
		time.Sleep(time.Millisecond)
	}

	close(sink.gate)
	d.Close()
}

func TestAuditEmitAfterCloseIsNoOp(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4}, sink)
	d.Close()

	d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginSuccess})
	if got := sink.count.Load(); got != 0 {
		t.Fatalf("sink saw %d events after close", got)
	}

	// Close is idempotent.
	d.Close()
}

func TestJSONWriterSink(t *testing.T) {
	var buf strings.Builder
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		EventType: auditEventResetRequested,
		AccountID: "acct-1",
		Success:   true,
	})
	sink.Emit(context.Background(), AuditEvent{
		EventType: auditEventLoginFailure,
		Error:     string(auditErrInvalidCredentials),
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %d: %q", len(lines), buf.String())
	}

	var first AuditEvent
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not valid JSON: %v", err)
	}
	if first.EventType != auditEventResetRequested || first.AccountID != "acct-1" {
		t.Fatalf("unexpected decoded event %+v", first)
	}
}

func TestEngineEmitsAuditEvents(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	ctx := context.Background()
	sink := NewChannelSink(16)
	engine := newTestEngine(t, rdb, nil)
	engine.audit = newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16}, sink)
	defer engine.Close()

	res := registerTestAccount(t, engine, "alice", "alice@example.com", "correct-horse-42")

	select {
	case event := <-sink.Events():
		if event.EventType != auditEventRegisterSuccess {
			t.Fatalf("event type = %q, want %q", event.EventType, auditEventRegisterSuccess)
		}
		if event.AccountID != res.AccountID || !event.Success {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for register audit event")
	}

	if _, err := engine.Login(ctx, "alice@example.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}

	select {
	case event := <-sink.Events():
		if event.EventType != auditEventLoginFailure {
			t.Fatalf("event type = %q, want %q", event.EventType, auditEventLoginFailure)
		}
		if event.Error != string(auditErrInvalidCredentials) {
			t.Fatalf("error code = %q, want %q", event.Error, auditErrInvalidCredentials)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for login audit event")
	}
}

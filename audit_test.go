package sessionkit

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/campuspulse/sessionkit/credstore"
)

func auditTestManager(t *testing.T, client *fakeAuthClient, sink AuditSink) (*Manager, *fakeClock) {
	t.Helper()

	clock := newFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false

	m, err := New().
		WithConfig(cfg).
		WithAuthClient(client).
		WithCredentialStore(credstore.NewMemory()).
		WithLogger(quietLogger()).
		WithAuditSink(sink).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)
	return m, clock
}

func waitEvent(t *testing.T, sink *ChannelSink, eventType string) AuditEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-sink.Events():
			if event.EventType == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event", eventType)
		}
	}
}

func TestAuditLoginLifecycle(t *testing.T) {
	sink := NewChannelSink(16)
	client := &fakeAuthClient{}
	m, clock := auditTestManager(t, client, sink)
	client.mu.Lock()
	client.loginReply = adminLoginReply(clock.Now())
	client.mu.Unlock()

	ctx := WithClientIP(context.Background(), "10.1.2.3")
	ctx = WithUserAgent(ctx, "dashboard/2.1")

	if _, err := m.Login(ctx, "admin@example.com", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	event := waitEvent(t, sink, AuditLoginSuccess)
	if event.UserID != "u-1" || event.Email != "admin@example.com" || event.Role != "admin" {
		t.Fatalf("unexpected login event: %+v", event)
	}
	if !event.Success {
		t.Fatal("login success event must carry Success=true")
	}
	if event.IP != "10.1.2.3" {
		t.Fatalf("expected context IP on event, got %q", event.IP)
	}
	if event.Metadata["user_agent"] != "dashboard/2.1" {
		t.Fatalf("expected user agent metadata, got %v", event.Metadata)
	}
	if event.ClientID != m.InstanceID() {
		t.Fatalf("expected instance id %q, got %q", m.InstanceID(), event.ClientID)
	}
	if !event.Timestamp.Equal(clock.Now()) {
		t.Fatalf("expected clock timestamp, got %v", event.Timestamp)
	}

	if err := m.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	event = waitEvent(t, sink, AuditLogout)
	if event.UserID != "u-1" {
		t.Fatalf("unexpected logout event: %+v", event)
	}
}

func TestAuditLoginFailure(t *testing.T) {
	sink := NewChannelSink(16)
	client := &fakeAuthClient{loginErr: context.DeadlineExceeded}
	m, _ := auditTestManager(t, client, sink)

	if _, err := m.Login(context.Background(), "admin@example.com", "nope"); err == nil {
		t.Fatal("expected login error")
	}

	event := waitEvent(t, sink, AuditLoginFailure)
	if event.Success {
		t.Fatal("failure event must carry Success=false")
	}
	if event.Error == "" {
		t.Fatal("failure event must carry the error string")
	}
	if event.Email != "admin@example.com" {
		t.Fatalf("failure event must carry the attempted email, got %q", event.Email)
	}
}

func TestAuditDisabledEmitsNothing(t *testing.T) {
	sink := NewChannelSink(16)
	clock := newFakeClock(time.Now())
	client := &fakeAuthClient{loginReply: adminLoginReply(clock.Now())}

	// Default config leaves auditing off; the sink must stay silent.
	m, err := New().
		WithAuthClient(client).
		WithCredentialStore(credstore.NewMemory()).
		WithLogger(quietLogger()).
		WithAuditSink(sink).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer m.Close()

	if _, err := m.Login(context.Background(), "admin@example.com", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	select {
	case event := <-sink.Events():
		t.Fatalf("unexpected audit event while disabled: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestJSONWriterSinkOutput(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	client := &fakeAuthClient{}
	m, clock := auditTestManager(t, client, sink)
	client.mu.Lock()
	client.loginReply = adminLoginReply(clock.Now())
	client.mu.Unlock()

	if _, err := m.Login(context.Background(), "admin@example.com", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	m.Close() // drains the dispatcher

	out := buf.String()
	if out == "" {
		t.Fatal("expected JSON audit output")
	}
	for _, want := range []string{`"event_type":"login.success"`, `"user_id":"u-1"`, `"role":"admin"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %s:\n%s", want, out)
		}
	}
}

// Package mail provides outbound email delivery for visit reminders. It ships
// a Mailgun HTTP sender for production, a plain SMTP sender for on-premise
// deployments, a recording mock for tests, and a small template engine for
// rendering reminder bodies.
package mail

import (
	"context"
	"errors"
	"sync"
)

// Message is a single outbound email.
type Message struct {
	To      string
	CC      []string
	Subject string
	Body    string
}

// Sender delivers an email message. Implementations must honor the context
// deadline; reminder creation waits synchronously on delivery.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NopSender drops every message. Used when no mail transport is configured.
type NopSender struct{}

func (NopSender) Send(context.Context, Message) error { return nil }

// Call records a single call to a MockSender.
type Call struct {
	To      string
	CC      []string
	Subject string
	Body    string
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	calls      []Call
	ShouldFail bool
	FailError  string
}

// Send records the call and optionally returns an error.
func (m *MockSender) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{To: msg.To, CC: msg.CC, Subject: msg.Subject, Body: msg.Body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded calls.
func (m *MockSender) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

package mocks

import (
	"context"
	"sync"

	"github.com/you/erpauth/domain"
)

// SentMessage is one captured mail or SMS
type SentMessage struct {
	To      string
	Subject string
	Body    string
}

// MockMailSender implements domain.MailSender interface for testing
type MockMailSender struct {
	SendMailFunc func(ctx context.Context, to, subject, htmlBody string) error

	mu   sync.Mutex
	Sent []SentMessage
}

// NewMockMailSender creates a new MockMailSender
func NewMockMailSender() *MockMailSender {
	return &MockMailSender{}
}

// SendMail records the mail
func (m *MockMailSender) SendMail(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, SentMessage{To: to, Subject: subject, Body: htmlBody})
	m.mu.Unlock()
	if m.SendMailFunc != nil {
		return m.SendMailFunc(ctx, to, subject, htmlBody)
	}
	return nil
}

// MockSMSSender implements domain.SMSSender interface for testing
type MockSMSSender struct {
	SendSMSFunc func(ctx context.Context, to, message string) error

	mu   sync.Mutex
	Sent []SentMessage
}

// NewMockSMSSender creates a new MockSMSSender
func NewMockSMSSender() *MockSMSSender {
	return &MockSMSSender{}
}

// SendSMS records the message
func (m *MockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, SentMessage{To: to, Body: message})
	m.mu.Unlock()
	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(ctx, to, message)
	}
	return nil
}

// MockAuditLogger implements domain.AuditLogger interface for testing
type MockAuditLogger struct {
	mu     sync.Mutex
	Events []*domain.AuditEvent
}

// NewMockAuditLogger creates a new MockAuditLogger
func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

// LogEvent records the event
func (m *MockAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Types returns the recorded event types in order
func (m *MockAuditLogger) Types() []domain.AuditEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditEventType, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.EventType)
	}
	return out
}

// Compile-time interface compliance verification
var (
	_ domain.MailSender  = (*MockMailSender)(nil)
	_ domain.SMSSender   = (*MockSMSSender)(nil)
	_ domain.AuditLogger = (*MockAuditLogger)(nil)
)

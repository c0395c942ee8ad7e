package mocks

import (
	"context"
	"sync"

	"github.com/you/erpauth/domain"
)

// MockNotificationService implements domain.NotificationService interface for testing
type MockNotificationService struct {
	NotifyFunc      func(ctx context.Context, n domain.Notification) error
	CountUnreadFunc func(ctx context.Context, userID string) (int64, error)
}

// NewMockNotificationService creates a new MockNotificationService with default behaviors
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// Notify stores a notification
func (m *MockNotificationService) Notify(ctx context.Context, n domain.Notification) error {
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, n)
	}
	return nil
}

// CountUnread counts unread notifications
func (m *MockNotificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	if m.CountUnreadFunc != nil {
		return m.CountUnreadFunc(ctx, userID)
	}
	return 0, nil
}

// MockNotificationPublisher records published notifications
type MockNotificationPublisher struct {
	mu        sync.Mutex
	Published []domain.Notification
}

// NewMockNotificationPublisher creates a new MockNotificationPublisher
func NewMockNotificationPublisher() *MockNotificationPublisher {
	return &MockNotificationPublisher{}
}

// Publish records the notification
func (m *MockNotificationPublisher) Publish(n domain.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, n)
}

// Titles returns the titles of everything published so far
func (m *MockNotificationPublisher) Titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Published))
	for _, n := range m.Published {
		out = append(out, n.Title)
	}
	return out
}

// Compile-time interface compliance verification
var (
	_ domain.NotificationService   = (*MockNotificationService)(nil)
	_ domain.NotificationPublisher = (*MockNotificationPublisher)(nil)
)

package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vigilo-hq/vigilo/internal/domain/audit"
	"github.com/vigilo-hq/vigilo/internal/domain/notification"
	"github.com/vigilo-hq/vigilo/internal/domain/principal"
	"github.com/vigilo-hq/vigilo/internal/domain/task"
)

// MockDirectory is an in-memory principal.Directory
type MockDirectory struct {
	Principals map[string]principal.Principal
	Managers   map[string]string // userID -> managerID
	RoleError  error
	ByIDError  error
}

func NewMockDirectory() *MockDirectory {
	return &MockDirectory{
		Principals: make(map[string]principal.Principal),
		Managers:   make(map[string]string),
	}
}

// Add registers a principal, optionally with a manager
func (m *MockDirectory) Add(p principal.Principal, managerID string) {
	m.Principals[p.ID] = p
	if managerID != "" {
		m.Managers[p.ID] = managerID
	}
}

func (m *MockDirectory) UsersWithRole(ctx context.Context, role principal.Role) ([]principal.Principal, error) {
	if m.RoleError != nil {
		return nil, m.RoleError
	}
	var out []principal.Principal
	for _, p := range m.Principals {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockDirectory) ManagerOf(ctx context.Context, userID string) (*principal.Principal, error) {
	mgrID, ok := m.Managers[userID]
	if !ok {
		return nil, nil
	}
	mgr, ok := m.Principals[mgrID]
	if !ok {
		return nil, nil
	}
	return &mgr, nil
}

func (m *MockDirectory) ByID(ctx context.Context, userID string) (*principal.Principal, error) {
	if m.ByIDError != nil {
		return nil, m.ByIDError
	}
	p, ok := m.Principals[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// MockSink records notifications and dedups like the real sink
type MockSink struct {
	mu            sync.Mutex
	Notifications []*notification.Notification
	seen          map[string]bool
	NotifyError   error
}

func NewMockSink() *MockSink {
	return &MockSink{seen: make(map[string]bool)}
}

func (m *MockSink) Notify(ctx context.Context, n *notification.Notification) error {
	if m.NotifyError != nil {
		return m.NotifyError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := n.EventID + "|" + n.Recipient.ID
	if m.seen[key] {
		return nil
	}
	m.seen[key] = true
	m.Notifications = append(m.Notifications, n)
	return nil
}

// Count returns the number of stored notifications
func (m *MockSink) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Notifications)
}

// MockMailer records queued emails
type MockMailer struct {
	mu         sync.Mutex
	Emails     []QueuedEmail
	QueueError error
}

type QueuedEmail struct {
	Template  string
	Recipient string
	Title     string
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) QueueEmail(ctx context.Context, template string, n *notification.Notification) error {
	if m.QueueError != nil {
		return m.QueueError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emails = append(m.Emails, QueuedEmail{
		Template:  template,
		Recipient: n.Recipient.Email,
		Title:     n.Title,
	})
	return nil
}

func (m *MockMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Emails)
}

// MockAuditStore is an in-memory audit.Store
type MockAuditStore struct {
	mu          sync.Mutex
	Entries     []*audit.Entry
	Alerts      []*audit.SecurityAlert
	AppendError error
	AlertError  error
	QueryError  error
}

func NewMockAuditStore() *MockAuditStore {
	return &MockAuditStore{}
}

func (m *MockAuditStore) AppendAudit(ctx context.Context, e *audit.Entry) error {
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, e)
	return nil
}

func (m *MockAuditStore) CreateSecurityAlert(ctx context.Context, a *audit.SecurityAlert) error {
	if m.AlertError != nil {
		return m.AlertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, a)
	return nil
}

func (m *MockAuditStore) RecentByKind(ctx context.Context, kind string, since time.Time) ([]*audit.Entry, error) {
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*audit.Entry
	for _, e := range m.Entries {
		if e.Kind == kind && !e.OccurredAt.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

// AlertsOfType returns recorded security alerts matching a type
func (m *MockAuditStore) AlertsOfType(alertType string) []*audit.SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*audit.SecurityAlert
	for _, a := range m.Alerts {
		if a.Type == alertType {
			out = append(out, a)
		}
	}
	return out
}

// MockTaskStore is an in-memory task.Store
type MockTaskStore struct {
	mu          sync.Mutex
	Tasks       []*task.Task
	Reviews     []*task.Review
	TaskError   error
	ReviewError error
}

func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{}
}

func (m *MockTaskStore) CreateTask(ctx context.Context, t *task.Task) error {
	if m.TaskError != nil {
		return m.TaskError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks = append(m.Tasks, t)
	return nil
}

func (m *MockTaskStore) CreateReview(ctx context.Context, r *task.Review) error {
	if m.ReviewError != nil {
		return m.ReviewError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reviews = append(m.Reviews, r)
	return nil
}

// TasksOfKind returns recorded tasks matching a kind
func (m *MockTaskStore) TasksOfKind(kind string) []*task.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*task.Task
	for _, t := range m.Tasks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

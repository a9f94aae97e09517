package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/regionwatch/module/core/domain"
	"github.com/nandanugg/regionwatch/platform/metrics"
	"github.com/nandanugg/regionwatch/platform/retry"
)

type monitoringCapability interface {
	IsSessionActive(ctx context.Context, taskName string) (bool, error)
	StopSession(ctx context.Context, taskName string) error
	StartSession(ctx context.Context, taskName string, regions []domain.Region) error
}

var defaultStartPolicy = retry.Policy{
	MaxAttempts:    3,
	InitialBackoff: 500 * time.Millisecond,
}

// SessionManager owns the single monitoring session. EnsureSingleSession and
// Stop are its only mutating entry points; overlapping calls are rejected
// with domain.ErrSessionBusy.
type SessionManager struct {
	location    monitoringCapability
	tasks       domain.TaskRegistry
	taskName    string
	startPolicy retry.Policy
	now         func() time.Time

	mu      sync.Mutex
	state   domain.SessionState
	session *domain.Session
}

func NewSessionManager(location monitoringCapability, tasks domain.TaskRegistry, taskName string) *SessionManager {
	if taskName == "" {
		taskName = domain.DefaultTaskName
	}
	return &SessionManager{
		location:    location,
		tasks:       tasks,
		taskName:    taskName,
		startPolicy: defaultStartPolicy,
		now:         time.Now,
		state:       domain.SessionIdle,
	}
}

func (m *SessionManager) TaskName() string {
	return m.taskName
}

// EnsureSingleSession replaces whatever is registered with exactly one
// session under the manager's task name covering regions.
func (m *SessionManager) EnsureSingleSession(ctx context.Context, regions []domain.Region) (*domain.Session, error) {
	if err := domain.ValidateRegions(regions); err != nil {
		return nil, err
	}
	prevState, prev, err := m.transition(domain.SessionStarting)
	if err != nil {
		return nil, err
	}

	session, cleared, err := m.install(ctx, regions)
	if err != nil {
		metrics.SessionStartsTotal.WithLabelValues("error").Inc()
		if cleared {
			metrics.SessionRegions.Set(0)
			m.finish(domain.SessionIdle, nil)
		} else {
			// The previous session was never stopped and is still running.
			m.finish(prevState, prev)
		}
		return nil, &domain.StartupError{Kind: domain.KindMonitoringStartFailure, Err: err}
	}

	metrics.SessionStartsTotal.WithLabelValues("ok").Inc()
	metrics.SessionRegions.Set(float64(len(regions)))
	m.finish(domain.SessionActive, session)

	slog.InfoContext(ctx, "Monitoring session started",
		"session_id", session.ID, "task", m.taskName, "regions", len(regions))

	return copySession(session), nil
}

// install reports cleared once no previous session under the task name is
// running, so a failure after that point leaves the manager idle.
func (m *SessionManager) install(ctx context.Context, regions []domain.Region) (session *domain.Session, cleared bool, err error) {
	active, err := m.location.IsSessionActive(ctx, m.taskName)
	if err != nil {
		return nil, false, fmt.Errorf("query session: %w", err)
	}
	if active {
		if err := m.location.StopSession(ctx, m.taskName); err != nil {
			return nil, false, fmt.Errorf("stop session: %w", err)
		}
		slog.InfoContext(ctx, "Stopped previous monitoring session", "task", m.taskName)
	}

	if err := m.removeStaleTasks(ctx); err != nil {
		return nil, true, err
	}

	regionSet := make([]domain.Region, len(regions))
	copy(regionSet, regions)

	p := m.startPolicy
	p.OnRetry = func(attempt int, err error, backoff time.Duration) {
		slog.WarnContext(ctx, "Start session failed, retrying",
			"task", m.taskName, "attempt", attempt, "backoff", backoff, "error", err)
	}
	err = retry.Do(ctx, p, classifyStartError, func() error {
		return m.location.StartSession(ctx, m.taskName, regionSet)
	})
	if err != nil {
		return nil, true, fmt.Errorf("start session: %w", err)
	}

	return &domain.Session{
		ID:        uuid.New(),
		TaskName:  m.taskName,
		Regions:   regionSet,
		State:     domain.SessionActive,
		StartedAt: m.now(),
	}, true, nil
}

func (m *SessionManager) removeStaleTasks(ctx context.Context) error {
	tasks, err := m.tasks.ListRegisteredTasks(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		slog.DebugContext(ctx, "No registered tasks to remove")
		return nil
	}

	for _, task := range tasks {
		if task.TaskType != domain.TaskTypeGeofencing || task.TaskName == m.taskName {
			continue
		}
		if err := m.tasks.UnregisterTask(ctx, task.TaskName); err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
			return fmt.Errorf("unregister task %s: %w", task.TaskName, err)
		}
		metrics.StaleTasksRemovedTotal.Inc()
		slog.InfoContext(ctx, "Removed stale geofencing task", "task", task.TaskName)
	}
	return nil
}

// Stop tears down the active session, if any.
func (m *SessionManager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.state == domain.SessionIdle {
		m.mu.Unlock()
		return nil
	}
	if m.state != domain.SessionActive {
		m.mu.Unlock()
		return domain.ErrSessionBusy
	}
	m.state = domain.SessionStopping
	m.mu.Unlock()

	if err := m.location.StopSession(ctx, m.taskName); err != nil {
		m.finish(domain.SessionActive, m.Current())
		return fmt.Errorf("stop session: %w", err)
	}

	metrics.SessionRegions.Set(0)
	m.finish(domain.SessionIdle, nil)
	slog.InfoContext(ctx, "Monitoring session stopped", "task", m.taskName)
	return nil
}

// Current returns a copy of the active session, or nil when idle.
func (m *SessionManager) Current() *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.session)
}

func (m *SessionManager) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// transition returns the state and session it replaced.
func (m *SessionManager) transition(to domain.SessionState) (domain.SessionState, *domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == domain.SessionStarting || m.state == domain.SessionStopping {
		return m.state, nil, domain.ErrSessionBusy
	}
	prevState, prev := m.state, m.session
	m.state = to
	return prevState, prev, nil
}

func (m *SessionManager) finish(state domain.SessionState, session *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.session = session
}

func classifyStartError(err error) retry.Action {
	if errors.Is(err, domain.ErrPermissionDenied) || errors.Is(err, domain.ErrInvalidRegion) {
		return retry.Stop
	}
	return retry.Retry
}

func copySession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Regions = make([]domain.Region, len(s.Regions))
	copy(c.Regions, s.Regions)
	return &c
}

package geofencing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nandanugg/regionwatch/module/core/domain"
	"github.com/nandanugg/regionwatch/module/core/internal/repository/database"
	"github.com/nandanugg/regionwatch/platform/metrics"
)

var (
	_ domain.LocationCapability = (*Engine)(nil)
	_ domain.TaskRegistry       = (*Engine)(nil)
)

const (
	DefaultPositionTimeout = 30 * time.Second
	defaultEventBuffer     = 64
)

type regionState int

const (
	stateUnknown regionState = iota
	stateInside
	stateOutside
)

type watchedRegion struct {
	region domain.Region
	state  regionState
}

// Engine evaluates device position fixes against the regions of started
// sessions and emits enter/exit events. Registrations are persisted in the
// task repository so orphans from earlier runs remain visible.
type Engine struct {
	tasks           database.TaskRepository
	permissions     database.PermissionRepository
	positionTimeout time.Duration
	now             func() time.Time

	mu       sync.Mutex
	sessions map[string][]*watchedRegion
	latest   *domain.Position
	fixed    chan struct{}
	events   chan domain.GeofenceEvent
	closed   bool
}

func NewEngine(tasks database.TaskRepository, permissions database.PermissionRepository, positionTimeout time.Duration) *Engine {
	if positionTimeout <= 0 {
		positionTimeout = DefaultPositionTimeout
	}
	return &Engine{
		tasks:           tasks,
		permissions:     permissions,
		positionTimeout: positionTimeout,
		now:             time.Now,
		sessions:        make(map[string][]*watchedRegion),
		fixed:           make(chan struct{}),
		events:          make(chan domain.GeofenceEvent, defaultEventBuffer),
	}
}

func (e *Engine) Events() <-chan domain.GeofenceEvent {
	return e.events
}

func (e *Engine) RequestForegroundPermission(ctx context.Context) (domain.PermissionStatus, error) {
	return e.permissions.Get(ctx, domain.PermissionLocation)
}

// GetCurrentPosition returns the latest fix, waiting up to the position
// timeout for the first one.
func (e *Engine) GetCurrentPosition(ctx context.Context) (*domain.Position, error) {
	if err := e.requireLocationPermission(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.positionTimeout)
	defer cancel()

	for {
		e.mu.Lock()
		if e.latest != nil {
			pos := *e.latest
			e.mu.Unlock()
			return &pos, nil
		}
		fixed := e.fixed
		e.mu.Unlock()

		select {
		case <-fixed:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: no fix received: %v", domain.ErrPositionUnavailable, ctx.Err())
		}
	}
}

func (e *Engine) IsSessionActive(_ context.Context, taskName string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.sessions[taskName]
	return ok, nil
}

// StopSession is idempotent: stopping an unknown task is not an error. The
// session keeps running if its registration cannot be removed.
func (e *Engine) StopSession(ctx context.Context, taskName string) error {
	if _, err := e.tasks.Delete(ctx, taskName); err != nil {
		return fmt.Errorf("delete task registration: %w", err)
	}

	e.mu.Lock()
	delete(e.sessions, taskName)
	e.mu.Unlock()
	return nil
}

func (e *Engine) StartSession(ctx context.Context, taskName string, regions []domain.Region) error {
	if err := e.requireLocationPermission(ctx); err != nil {
		return err
	}
	if err := domain.ValidateRegions(regions); err != nil {
		return err
	}

	task := domain.RegisteredTask{
		TaskName:     taskName,
		TaskType:     domain.TaskTypeGeofencing,
		RegisteredAt: e.now(),
	}
	if err := e.tasks.Upsert(ctx, task); err != nil {
		return fmt.Errorf("register task: %w", err)
	}

	watched := make([]*watchedRegion, len(regions))
	for i, r := range regions {
		watched[i] = &watchedRegion{region: r}
	}

	e.mu.Lock()
	e.sessions[taskName] = watched
	e.mu.Unlock()
	return nil
}

func (e *Engine) ListRegisteredTasks(ctx context.Context) ([]domain.RegisteredTask, error) {
	return e.tasks.List(ctx)
}

func (e *Engine) UnregisterTask(ctx context.Context, taskName string) error {
	existed, err := e.tasks.Delete(ctx, taskName)
	if err != nil {
		return fmt.Errorf("delete task registration: %w", err)
	}

	e.mu.Lock()
	_, running := e.sessions[taskName]
	delete(e.sessions, taskName)
	e.mu.Unlock()

	if !existed && !running {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Observe feeds one device fix into the engine.
func (e *Engine) Observe(ctx context.Context, fix domain.PositionFix) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if fix.Error != "" {
		metrics.PositionFixesTotal.WithLabelValues("error").Inc()
		err := fmt.Errorf("device %s: %s", fix.DeviceID, fix.Error)
		if len(e.sessions) == 0 {
			slog.WarnContext(ctx, "Position error with no active session", "error", err)
			return
		}
		for taskName := range e.sessions {
			e.emit(ctx, domain.GeofenceEvent{TaskName: taskName, Err: err})
		}
		return
	}

	metrics.PositionFixesTotal.WithLabelValues("ok").Inc()
	pos := fix.Position
	e.latest = &pos
	close(e.fixed)
	e.fixed = make(chan struct{})

	for taskName, regions := range e.sessions {
		for _, w := range regions {
			inside := haversine(pos.Lat, pos.Lon, w.region.Lat, w.region.Lon) <= w.region.Radius
			switch {
			case inside && w.state != stateInside:
				w.state = stateInside
				if w.region.NotifyOnEnter {
					e.emit(ctx, domain.GeofenceEvent{Type: domain.GeofenceEnter, RegionIdentifier: w.region.Identifier, TaskName: taskName})
				}
			case !inside && w.state == stateInside:
				w.state = stateOutside
				if w.region.NotifyOnExit {
					e.emit(ctx, domain.GeofenceEvent{Type: domain.GeofenceExit, RegionIdentifier: w.region.Identifier, TaskName: taskName})
				}
			case !inside:
				w.state = stateOutside
			}
		}
	}
}

// Close stops event delivery. Fixes observed afterwards update the position
// but emit nothing.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.events)
}

// emit must be called with e.mu held.
func (e *Engine) emit(ctx context.Context, ev domain.GeofenceEvent) {
	if e.closed {
		return
	}
	select {
	case e.events <- ev:
	default:
		metrics.GeofenceEventsDropped.Inc()
		slog.WarnContext(ctx, "Geofence event dropped, queue full", "task", ev.TaskName, "region", ev.RegionIdentifier)
	}
}

func (e *Engine) requireLocationPermission(ctx context.Context) error {
	status, err := e.permissions.Get(ctx, domain.PermissionLocation)
	if err != nil {
		return fmt.Errorf("location permission: %w", err)
	}
	if status != domain.PermissionGranted {
		return fmt.Errorf("location: %w", domain.ErrPermissionDenied)
	}
	return nil
}

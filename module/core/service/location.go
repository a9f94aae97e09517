package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nandanugg/regionwatch/module/core/domain"
)

const (
	MsgLocationDenied       = "Permission to access location was denied"
	MsgNotificationsDenied  = "Permission to send Notifications was denied"
	MsgPositionUnavailable  = "Current position is unavailable"
	MsgMonitoringFailed     = "Region monitoring could not be started"
	msgEventErrorPrefix     = "Region monitoring reported an error: "
	msgSessionAlreadyActive = "Region monitoring is already starting"
)

type locationProvider interface {
	RequestForegroundPermission(ctx context.Context) (domain.PermissionStatus, error)
	GetCurrentPosition(ctx context.Context) (*domain.Position, error)
}

type notificationSetup interface {
	RequestPermission(ctx context.Context) (domain.PermissionStatus, error)
	ConfigureChannel(ctx context.Context, channel domain.NotificationChannel) error
}

type sessionInstaller interface {
	EnsureSingleSession(ctx context.Context, regions []domain.Region) (*domain.Session, error)
}

// Status is what the user sees: the last known position or an error message.
type Status struct {
	Location *domain.Position `json:"location"`
	ErrorMsg string           `json:"error,omitempty"`
}

// MonitorService runs the startup sequence: permissions, current position,
// region set, single monitoring session.
type MonitorService struct {
	location      locationProvider
	notifications notificationSetup
	sessions      sessionInstaller
	static        []domain.RegionConfig
	dynamicRadius float64

	mu     sync.RWMutex
	status Status
}

func NewMonitorService(location locationProvider, notifications notificationSetup, sessions sessionInstaller, static []domain.RegionConfig, dynamicRadius float64) *MonitorService {
	return &MonitorService{
		location:      location,
		notifications: notifications,
		sessions:      sessions,
		static:        static,
		dynamicRadius: dynamicRadius,
	}
}

func (s *MonitorService) Start(ctx context.Context) (*domain.Session, error) {
	if err := s.requestPermissions(ctx); err != nil {
		s.fail(ctx, err)
		return nil, err
	}

	if err := s.notifications.ConfigureChannel(ctx, domain.DefaultNotificationChannel); err != nil {
		slog.WarnContext(ctx, "Configure notification channel failed", "error", err)
	}

	pos, err := s.location.GetCurrentPosition(ctx)
	if err != nil {
		err = &domain.StartupError{Kind: domain.KindPositionUnavailable, Err: err}
		s.fail(ctx, err)
		return nil, err
	}
	s.setLocation(pos)
	slog.InfoContext(ctx, "Current position", "latitude", pos.Lat, "longitude", pos.Lon, "accuracy", pos.Accuracy)

	regions := BuildRegionSet(*pos, s.static, s.dynamicRadius)
	session, err := s.sessions.EnsureSingleSession(ctx, regions)
	if err != nil {
		if errors.Is(err, domain.ErrSessionBusy) {
			slog.InfoContext(ctx, msgSessionAlreadyActive)
			return nil, err
		}
		if domain.StartupErrorKindOf(err) == "" {
			err = &domain.StartupError{Kind: domain.KindMonitoringStartFailure, Err: err}
		}
		s.fail(ctx, err)
		return nil, err
	}

	s.clearError()
	return session, nil
}

func (s *MonitorService) requestPermissions(ctx context.Context) error {
	status, err := s.location.RequestForegroundPermission(ctx)
	if err != nil {
		return &domain.StartupError{Kind: domain.KindLocationPermissionDenied, Err: fmt.Errorf("request location permission: %w", err)}
	}
	slog.InfoContext(ctx, "Location permission", "status", status)
	if status != domain.PermissionGranted {
		return &domain.StartupError{Kind: domain.KindLocationPermissionDenied, Err: domain.ErrPermissionDenied}
	}

	status, err = s.notifications.RequestPermission(ctx)
	if err != nil {
		return &domain.StartupError{Kind: domain.KindNotificationPermissionDenied, Err: fmt.Errorf("request notification permission: %w", err)}
	}
	if status != domain.PermissionGranted {
		return &domain.StartupError{Kind: domain.KindNotificationPermissionDenied, Err: domain.ErrPermissionDenied}
	}
	return nil
}

// ReportEventError records a delivery error from the running session. The
// session itself is left untouched.
func (s *MonitorService) ReportEventError(_ context.Context, err error) {
	s.mu.Lock()
	s.status.ErrorMsg = msgEventErrorPrefix + err.Error()
	s.mu.Unlock()
}

func (s *MonitorService) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	if st.Location != nil {
		pos := *st.Location
		st.Location = &pos
	}
	return st
}

func (s *MonitorService) fail(ctx context.Context, err error) {
	msg := errorMessage(err)
	slog.ErrorContext(ctx, "Monitoring startup failed", "kind", domain.StartupErrorKindOf(err), "error", err)
	s.mu.Lock()
	s.status.ErrorMsg = msg
	s.mu.Unlock()
}

func (s *MonitorService) setLocation(pos *domain.Position) {
	p := *pos
	s.mu.Lock()
	s.status.Location = &p
	s.mu.Unlock()
}

func (s *MonitorService) clearError() {
	s.mu.Lock()
	s.status.ErrorMsg = ""
	s.mu.Unlock()
}

func errorMessage(err error) string {
	switch domain.StartupErrorKindOf(err) {
	case domain.KindLocationPermissionDenied:
		return MsgLocationDenied
	case domain.KindNotificationPermissionDenied:
		return MsgNotificationsDenied
	case domain.KindPositionUnavailable:
		return MsgPositionUnavailable
	default:
		return MsgMonitoringFailed
	}
}

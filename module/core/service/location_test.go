package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nandanugg/regionwatch/module/core/domain"
)

type mockLocationProvider struct {
	permissionFn func(ctx context.Context) (domain.PermissionStatus, error)
	positionFn   func(ctx context.Context) (*domain.Position, error)
}

func (m *mockLocationProvider) RequestForegroundPermission(ctx context.Context) (domain.PermissionStatus, error) {
	if m.permissionFn == nil {
		return domain.PermissionGranted, nil
	}
	return m.permissionFn(ctx)
}

func (m *mockLocationProvider) GetCurrentPosition(ctx context.Context) (*domain.Position, error) {
	return m.positionFn(ctx)
}

type mockNotificationSetup struct {
	permissionFn func(ctx context.Context) (domain.PermissionStatus, error)
	configureFn  func(ctx context.Context, ch domain.NotificationChannel) error
	channels     []domain.NotificationChannel
}

func (m *mockNotificationSetup) RequestPermission(ctx context.Context) (domain.PermissionStatus, error) {
	if m.permissionFn == nil {
		return domain.PermissionGranted, nil
	}
	return m.permissionFn(ctx)
}

func (m *mockNotificationSetup) ConfigureChannel(ctx context.Context, ch domain.NotificationChannel) error {
	m.channels = append(m.channels, ch)
	if m.configureFn != nil {
		return m.configureFn(ctx, ch)
	}
	return nil
}

type mockInstaller struct {
	ensureFn func(ctx context.Context, regions []domain.Region) (*domain.Session, error)
	calls    [][]domain.Region
}

func (m *mockInstaller) EnsureSingleSession(ctx context.Context, regions []domain.Region) (*domain.Session, error) {
	m.calls = append(m.calls, regions)
	if m.ensureFn != nil {
		return m.ensureFn(ctx, regions)
	}
	return &domain.Session{TaskName: domain.DefaultTaskName, Regions: regions, State: domain.SessionActive}, nil
}

func florencePosition() *domain.Position {
	return &domain.Position{Lat: 43.77, Lon: 11.25, Accuracy: 12, Timestamp: time.Unix(1715003456, 0)}
}

func staticFlorence() []domain.RegionConfig {
	return []domain.RegionConfig{{Identifier: "SMN", Lat: 43.766667, Lon: 11.25, Radius: 300}}
}

func TestStart_Success(t *testing.T) {
	loc := &mockLocationProvider{
		positionFn: func(_ context.Context) (*domain.Position, error) { return florencePosition(), nil },
	}
	notif := &mockNotificationSetup{}
	inst := &mockInstaller{}
	svc := NewMonitorService(loc, notif, inst, staticFlorence(), 500)

	session, err := svc.Start(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(session.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(session.Regions))
	}
	if len(inst.calls) != 1 {
		t.Fatalf("expected 1 install, got %d", len(inst.calls))
	}
	if inst.calls[0][0].Identifier != "ME" || inst.calls[0][0].Lat != 43.77 {
		t.Errorf("expected ME region at current position, got %+v", inst.calls[0][0])
	}
	if len(notif.channels) != 1 || notif.channels[0].Name != "default" {
		t.Errorf("expected default channel to be configured, got %+v", notif.channels)
	}

	st := svc.Status()
	if st.ErrorMsg != "" {
		t.Errorf("expected no error, got %q", st.ErrorMsg)
	}
	if st.Location == nil || st.Location.Lat != 43.77 {
		t.Errorf("expected location to be recorded, got %+v", st.Location)
	}
}

func TestStart_LocationPermissionDenied(t *testing.T) {
	loc := &mockLocationProvider{
		permissionFn: func(_ context.Context) (domain.PermissionStatus, error) { return domain.PermissionDenied, nil },
		positionFn: func(_ context.Context) (*domain.Position, error) {
			t.Fatal("GetCurrentPosition should not be called")
			return nil, nil
		},
	}
	inst := &mockInstaller{}
	svc := NewMonitorService(loc, &mockNotificationSetup{}, inst, nil, 500)

	_, err := svc.Start(context.Background())
	if domain.StartupErrorKindOf(err) != domain.KindLocationPermissionDenied {
		t.Fatalf("expected location permission denied, got %v", err)
	}
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied in chain, got %v", err)
	}
	if svc.Status().ErrorMsg != "Permission to access location was denied" {
		t.Errorf("unexpected message %q", svc.Status().ErrorMsg)
	}
	if len(inst.calls) != 0 {
		t.Error("expected no session install")
	}
}

func TestStart_UndeterminedCountsAsDenied(t *testing.T) {
	loc := &mockLocationProvider{
		permissionFn: func(_ context.Context) (domain.PermissionStatus, error) { return domain.PermissionUndetermined, nil },
	}
	svc := NewMonitorService(loc, &mockNotificationSetup{}, &mockInstaller{}, nil, 500)

	_, err := svc.Start(context.Background())
	if domain.StartupErrorKindOf(err) != domain.KindLocationPermissionDenied {
		t.Fatalf("expected location permission denied, got %v", err)
	}
}

func TestStart_NotificationPermissionDenied(t *testing.T) {
	loc := &mockLocationProvider{}
	notif := &mockNotificationSetup{
		permissionFn: func(_ context.Context) (domain.PermissionStatus, error) { return domain.PermissionDenied, nil },
	}
	svc := NewMonitorService(loc, notif, &mockInstaller{}, nil, 500)

	_, err := svc.Start(context.Background())
	if domain.StartupErrorKindOf(err) != domain.KindNotificationPermissionDenied {
		t.Fatalf("expected notification permission denied, got %v", err)
	}
	if svc.Status().ErrorMsg != "Permission to send Notifications was denied" {
		t.Errorf("unexpected message %q", svc.Status().ErrorMsg)
	}
}

func TestStart_PermissionLookupError(t *testing.T) {
	lookupErr := errors.New("db down")
	loc := &mockLocationProvider{
		permissionFn: func(_ context.Context) (domain.PermissionStatus, error) { return "", lookupErr },
	}
	svc := NewMonitorService(loc, &mockNotificationSetup{}, &mockInstaller{}, nil, 500)

	_, err := svc.Start(context.Background())
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}

func TestStart_PositionUnavailable(t *testing.T) {
	loc := &mockLocationProvider{
		positionFn: func(_ context.Context) (*domain.Position, error) { return nil, domain.ErrPositionUnavailable },
	}
	inst := &mockInstaller{}
	svc := NewMonitorService(loc, &mockNotificationSetup{}, inst, nil, 500)

	_, err := svc.Start(context.Background())
	if domain.StartupErrorKindOf(err) != domain.KindPositionUnavailable {
		t.Fatalf("expected position unavailable, got %v", err)
	}
	if svc.Status().ErrorMsg != MsgPositionUnavailable {
		t.Errorf("unexpected message %q", svc.Status().ErrorMsg)
	}
	if len(inst.calls) != 0 {
		t.Error("expected no session install")
	}
}

func TestStart_ChannelFailureIsNotFatal(t *testing.T) {
	loc := &mockLocationProvider{
		positionFn: func(_ context.Context) (*domain.Position, error) { return florencePosition(), nil },
	}
	notif := &mockNotificationSetup{
		configureFn: func(_ context.Context, _ domain.NotificationChannel) error { return errors.New("broker down") },
	}
	svc := NewMonitorService(loc, notif, &mockInstaller{}, nil, 500)

	if _, err := svc.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStart_MonitoringFailure(t *testing.T) {
	loc := &mockLocationProvider{
		positionFn: func(_ context.Context) (*domain.Position, error) { return florencePosition(), nil },
	}
	inst := &mockInstaller{
		ensureFn: func(_ context.Context, _ []domain.Region) (*domain.Session, error) {
			return nil, &domain.StartupError{Kind: domain.KindMonitoringStartFailure, Err: errors.New("start refused")}
		},
	}
	svc := NewMonitorService(loc, &mockNotificationSetup{}, inst, nil, 500)

	_, err := svc.Start(context.Background())
	if domain.StartupErrorKindOf(err) != domain.KindMonitoringStartFailure {
		t.Fatalf("expected monitoring start failure, got %v", err)
	}
	st := svc.Status()
	if st.ErrorMsg != MsgMonitoringFailed {
		t.Errorf("unexpected message %q", st.ErrorMsg)
	}
	if st.Location == nil {
		t.Error("expected position to stay visible after a monitoring failure")
	}
}

func TestStart_InvalidRegionsAreMonitoringFailure(t *testing.T) {
	loc := &mockLocationProvider{
		positionFn: func(_ context.Context) (*domain.Position, error) { return florencePosition(), nil },
	}
	inst := &mockInstaller{
		ensureFn: func(_ context.Context, _ []domain.Region) (*domain.Session, error) {
			return nil, domain.ErrInvalidRegion
		},
	}
	svc := NewMonitorService(loc, &mockNotificationSetup{}, inst, nil, 500)

	_, err := svc.Start(context.Background())
	if domain.StartupErrorKindOf(err) != domain.KindMonitoringStartFailure {
		t.Fatalf("expected monitoring start failure, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidRegion) {
		t.Errorf("expected ErrInvalidRegion in chain, got %v", err)
	}
}

func TestStart_BusyLeavesStatusAlone(t *testing.T) {
	loc := &mockLocationProvider{
		positionFn: func(_ context.Context) (*domain.Position, error) { return florencePosition(), nil },
	}
	inst := &mockInstaller{
		ensureFn: func(_ context.Context, _ []domain.Region) (*domain.Session, error) {
			return nil, domain.ErrSessionBusy
		},
	}
	svc := NewMonitorService(loc, &mockNotificationSetup{}, inst, nil, 500)

	_, err := svc.Start(context.Background())
	if !errors.Is(err, domain.ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}
	if svc.Status().ErrorMsg != "" {
		t.Errorf("expected no error message, got %q", svc.Status().ErrorMsg)
	}
}

func TestStart_RetryClearsError(t *testing.T) {
	status := domain.PermissionDenied
	loc := &mockLocationProvider{
		permissionFn: func(_ context.Context) (domain.PermissionStatus, error) { return status, nil },
		positionFn:   func(_ context.Context) (*domain.Position, error) { return florencePosition(), nil },
	}
	svc := NewMonitorService(loc, &mockNotificationSetup{}, &mockInstaller{}, nil, 500)

	if _, err := svc.Start(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	status = domain.PermissionGranted
	if _, err := svc.Start(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc.Status().ErrorMsg != "" {
		t.Errorf("expected error to be cleared, got %q", svc.Status().ErrorMsg)
	}
}

func TestReportEventError(t *testing.T) {
	svc := NewMonitorService(&mockLocationProvider{}, &mockNotificationSetup{}, &mockInstaller{}, nil, 500)

	svc.ReportEventError(context.Background(), errors.New("gps lost"))

	msg := svc.Status().ErrorMsg
	if !strings.Contains(msg, "gps lost") {
		t.Errorf("expected event error in status, got %q", msg)
	}
}

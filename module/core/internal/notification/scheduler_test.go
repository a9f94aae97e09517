package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandanugg/regionwatch/module/core/domain"
)

type mockPublisher struct {
	err  error
	sent []*domain.ScheduledNotification
}

func (m *mockPublisher) PublishNotification(_ context.Context, n *domain.ScheduledNotification) error {
	m.sent = append(m.sent, n)
	return m.err
}

type mockPermissions struct {
	status domain.PermissionStatus
	err    error
}

func (m *mockPermissions) Get(_ context.Context, _ domain.PermissionKind) (domain.PermissionStatus, error) {
	return m.status, m.err
}

func (m *mockPermissions) Set(_ context.Context, _ domain.PermissionKind, status domain.PermissionStatus) error {
	m.status = status
	return nil
}

func TestScheduleNotification_Publishes(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Unix(1715003456, 0))
	pub := &mockPublisher{}
	s := NewScheduler(pub, &mockPermissions{status: domain.PermissionGranted}, clock)

	req := domain.NotificationRequest{Title: "SMN", Body: domain.EnteredRegionBody}
	err := s.ScheduleNotification(context.Background(), req, domain.Trigger{Delay: time.Second})
	require.NoError(t, err)

	require.Len(t, pub.sent, 1)
	n := pub.sent[0]
	assert.Equal(t, "SMN", n.Title)
	assert.Equal(t, "You've entered region", n.Body)
	assert.Equal(t, int64(1000), n.DelayMillis)
	assert.Equal(t, int64(1715003456000), n.ScheduledAt)
	assert.Equal(t, "default", n.Channel.Name)
	assert.True(t, n.DueAt().Equal(time.Unix(1715003457, 0)))
}

func TestScheduleNotification_UsesConfiguredChannel(t *testing.T) {
	pub := &mockPublisher{}
	s := NewScheduler(pub, &mockPermissions{status: domain.PermissionGranted}, clockwork.NewFakeClock())

	ch := domain.NotificationChannel{Name: "regions", Importance: "high"}
	require.NoError(t, s.ConfigureChannel(context.Background(), ch))
	require.NoError(t, s.ScheduleNotification(context.Background(), domain.NotificationRequest{Title: "NIC"}, domain.Trigger{}))

	require.Len(t, pub.sent, 1)
	assert.Equal(t, ch.Name, pub.sent[0].Channel.Name)
	assert.Equal(t, ch.Importance, pub.sent[0].Channel.Importance)
}

func TestConfigureChannel_RequiresName(t *testing.T) {
	s := NewScheduler(&mockPublisher{}, &mockPermissions{}, clockwork.NewFakeClock())
	assert.Error(t, s.ConfigureChannel(context.Background(), domain.NotificationChannel{}))
}

func TestScheduleNotification_PermissionRevoked(t *testing.T) {
	pub := &mockPublisher{}
	s := NewScheduler(pub, &mockPermissions{status: domain.PermissionDenied}, clockwork.NewFakeClock())

	err := s.ScheduleNotification(context.Background(), domain.NotificationRequest{Title: "SMN"}, domain.Trigger{Delay: time.Second})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
	assert.Empty(t, pub.sent)
}

func TestScheduleNotification_PublishError(t *testing.T) {
	pubErr := errors.New("channel closed")
	s := NewScheduler(&mockPublisher{err: pubErr}, &mockPermissions{status: domain.PermissionGranted}, clockwork.NewFakeClock())

	err := s.ScheduleNotification(context.Background(), domain.NotificationRequest{Title: "SMN"}, domain.Trigger{Delay: time.Second})
	assert.ErrorIs(t, err, pubErr)
}

func TestRequestPermission(t *testing.T) {
	s := NewScheduler(&mockPublisher{}, &mockPermissions{status: domain.PermissionUndetermined}, clockwork.NewFakeClock())

	status, err := s.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.PermissionUndetermined, status)
}

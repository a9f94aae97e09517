package core

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nandanugg/regionwatch/module/core/domain"
	"github.com/nandanugg/regionwatch/module/core/internal/geofencing"
	handler "github.com/nandanugg/regionwatch/module/core/internal/handler/http"
	"github.com/nandanugg/regionwatch/module/core/internal/handler/subscriber"
	"github.com/nandanugg/regionwatch/module/core/internal/notification"
	"github.com/nandanugg/regionwatch/module/core/internal/repository/database/postgres"
	"github.com/nandanugg/regionwatch/module/core/internal/repository/publisher/rabbitmq"
	"github.com/nandanugg/regionwatch/module/core/service"
)

// NotificationQueue is the queue that delivery workers consume.
const NotificationQueue = rabbitmq.QueueName

type Options struct {
	TaskName          string
	Regions           []domain.RegionConfig
	DynamicRadius     float64
	PositionTimeout   time.Duration
	NotificationDelay time.Duration
}

type Module struct {
	Sessions *service.SessionManager
	Monitor  *service.MonitorService

	engine     *geofencing.Engine
	router     *service.EventRouter
	handler    *handler.MonitorHandler
	subscriber *subscriber.LocationSubscriber
}

// Migrate creates the tables the module persists to.
func Migrate(ctx context.Context, db *sql.DB) error {
	return postgres.Migrate(ctx, db)
}

// DeclareNotificationTopology declares the exchange and queue scheduled
// notifications travel through.
func DeclareNotificationTopology(ch *amqp.Channel) error {
	return rabbitmq.DeclareTopology(ch)
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, opts Options) (*Module, error) {
	taskRepo := postgres.NewTaskRepo(db)
	permissionRepo := postgres.NewPermissionRepo(db)

	notificationPub, err := rabbitmq.NewNotificationPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("notification publisher: %w", err)
	}

	engine := geofencing.NewEngine(taskRepo, permissionRepo, opts.PositionTimeout)
	scheduler := notification.NewScheduler(notificationPub, permissionRepo, clockwork.NewRealClock())

	sessions := service.NewSessionManager(engine, engine, opts.TaskName)
	monitor := service.NewMonitorService(engine, scheduler, sessions, opts.Regions, opts.DynamicRadius)
	router := service.NewEventRouter(scheduler, monitor).WithTriggerDelay(opts.NotificationDelay)

	return &Module{
		Sessions:   sessions,
		Monitor:    monitor,
		engine:     engine,
		router:     router,
		handler:    handler.NewMonitorHandler(monitor, sessions, permissionRepo),
		subscriber: subscriber.NewLocationSubscriber(mqttClient, engine),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

func (m *Module) StartSubscribers() error {
	return m.subscriber.Start()
}

// Run routes geofence events to notifications until ctx is cancelled or the
// engine is closed.
func (m *Module) Run(ctx context.Context) {
	m.router.Run(ctx, m.engine.Events())
}

// Start brings up the monitoring session. Failures are reflected in the
// monitor status; the caller only logs them.
func (m *Module) Start(ctx context.Context) error {
	session, err := m.Monitor.Start(ctx)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Region monitoring started", "task", session.TaskName, "session_id", session.ID, "regions", len(session.Regions))
	return nil
}

func (m *Module) Shutdown(ctx context.Context) {
	if err := m.Sessions.Stop(ctx); err != nil {
		slog.WarnContext(ctx, "Stop session", "error", err)
	}
	m.engine.Close()
}

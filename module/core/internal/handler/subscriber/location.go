package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nandanugg/regionwatch/module/core/domain"
	"github.com/nandanugg/regionwatch/platform/metrics"
)

const TopicPattern = "/device/+/location"

type positionObserver interface {
	Observe(ctx context.Context, fix domain.PositionFix)
}

type locationMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
	Error     string  `json:"error,omitempty"`
}

type LocationSubscriber struct {
	client   mqtt.Client
	observer positionObserver
}

func NewLocationSubscriber(client mqtt.Client, observer positionObserver) *LocationSubscriber {
	return &LocationSubscriber{
		client:   client,
		observer: observer,
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(TopicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		metrics.PositionFixesTotal.WithLabelValues("invalid").Inc()
		slog.Warn("Invalid location message", "topic", msg.Topic(), "error", err)
		return
	}

	if err := validateLocationMessage(&raw); err != nil {
		metrics.PositionFixesTotal.WithLabelValues("invalid").Inc()
		slog.Warn("Location message validation failed", "topic", msg.Topic(), "error", err)
		return
	}

	fix := domain.PositionFix{
		DeviceID: raw.DeviceID,
		Error:    raw.Error,
		Position: domain.Position{
			Lat:       raw.Latitude,
			Lon:       raw.Longitude,
			Accuracy:  raw.Accuracy,
			Timestamp: time.Unix(raw.Timestamp, 0),
		},
	}

	s.observer.Observe(context.Background(), fix)
}

func validateLocationMessage(msg *locationMessage) error {
	if msg.DeviceID == "" {
		return fmt.Errorf("device_id: required")
	}
	if msg.Error != "" {
		return nil
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Accuracy < 0 {
		return fmt.Errorf("accuracy: must not be negative")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}

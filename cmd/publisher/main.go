package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nandanugg/regionwatch/config"
	"github.com/nandanugg/regionwatch/module/core/domain"
)

type locationMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Timestamp int64   `json:"timestamp"`
	Error     string  `json:"error,omitempty"`
}

// meters per degree of latitude; longitude spread is approximate
const metersPerDegree = 111_000.0

func pointNear(r domain.RegionConfig, maxDistance float64) (float64, float64) {
	spread := maxDistance / metersPerDegree
	lat := r.Lat + (rand.Float64()*2-1)*spread
	lon := r.Lon + (rand.Float64()*2-1)*spread
	return lat, lon
}

func nextMessage(deviceID string, regions []domain.RegionConfig) locationMessage {
	msg := locationMessage{DeviceID: deviceID, Timestamp: time.Now().Unix()}

	// 5% chance the device reports it cannot get a fix
	if rand.Float64() < 0.05 {
		msg.Error = "location services unavailable"
		return msg
	}

	r := regions[rand.Intn(len(regions))]
	// 40% chance to land inside the region, otherwise within three radii
	if rand.Float64() < 0.4 {
		msg.Latitude, msg.Longitude = pointNear(r, r.Radius*0.5)
	} else {
		msg.Latitude, msg.Longitude = pointNear(r, r.Radius*3)
	}
	msg.Accuracy = 5 + rand.Float64()*20
	return msg
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	config.InitLogger(cfg.LogLevel, cfg.LogFormat)

	regions, err := config.LoadRegions(cfg.RegionsFile)
	if err != nil || len(regions) == 0 {
		slog.Error("No regions to simulate around", "error", err)
		os.Exit(1)
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID("regionwatch-device-simulator")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		slog.Error("MQTT connect failed", "error", token.Error())
		os.Exit(1)
	}
	defer client.Disconnect(250)

	deviceID := uuid.NewString()
	slog.Info("Simulating device", "broker", cfg.MQTTBroker, "device_id", deviceID, "interval_s", intervalSec)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	topic := fmt.Sprintf("/device/%s/location", deviceID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		payload, _ := json.Marshal(nextMessage(deviceID, regions))
		token := client.Publish(topic, 1, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			slog.Warn("Publish failed", "topic", topic, "error", err)
			continue
		}
		slog.Info("Published", "topic", topic, "payload", string(payload))
	}
}

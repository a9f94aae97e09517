package domain

import "time"

type Position struct {
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// PositionFix is a raw report from the tracked device. A non-empty Error
// means the device could not determine its position.
type PositionFix struct {
	DeviceID string
	Position Position
	Error    string
}

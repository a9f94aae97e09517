package domain

type GeofenceEventType string

const (
	GeofenceEnter GeofenceEventType = "enter"
	GeofenceExit  GeofenceEventType = "exit"
)

// GeofenceEvent is a single boundary crossing delivered by the location
// capability. Err is set instead of Type when the capability itself failed.
type GeofenceEvent struct {
	Type             GeofenceEventType `json:"type"`
	RegionIdentifier string            `json:"region_identifier"`
	TaskName         string            `json:"task_name"`
	Err              error             `json:"-"`
}

package domain

import "errors"

var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrSessionBusy         = errors.New("session start or stop already in progress")
	ErrInvalidRegion       = errors.New("invalid region")
	ErrTaskNotFound        = errors.New("task not found")
)

type StartupErrorKind string

const (
	KindLocationPermissionDenied     StartupErrorKind = "location_permission_denied"
	KindNotificationPermissionDenied StartupErrorKind = "notification_permission_denied"
	KindPositionUnavailable          StartupErrorKind = "position_unavailable"
	KindMonitoringStartFailure       StartupErrorKind = "monitoring_start_failure"
)

// StartupError tags a failed startup step so callers can branch on Kind
// instead of parsing messages.
type StartupError struct {
	Kind StartupErrorKind
	Err  error
}

func (e *StartupError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *StartupError) Unwrap() error { return e.Err }

// StartupErrorKindOf returns the kind of the first StartupError in err's
// chain, or "" if there is none.
func StartupErrorKindOf(err error) StartupErrorKind {
	var se *StartupError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

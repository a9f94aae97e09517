package domain

type PermissionKind string

const (
	PermissionLocation      PermissionKind = "location"
	PermissionNotifications PermissionKind = "notifications"
)

type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"
)

func (k PermissionKind) Valid() bool {
	return k == PermissionLocation || k == PermissionNotifications
}

func (s PermissionStatus) Valid() bool {
	return s == PermissionGranted || s == PermissionDenied || s == PermissionUndetermined
}

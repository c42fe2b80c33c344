package inventory

import "fmt"

// Status is the closed set of machine states.
type Status string

const (
	StatusIdle    Status = "Idle"
	StatusRunning Status = "Running"
	StatusOffline Status = "Offline"
)

// Statuses lists every valid status in display order.
func Statuses() []Status {
	return []Status{StatusIdle, StatusRunning, StatusOffline}
}

// Valid reports whether s is a member of the status enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusIdle, StatusRunning, StatusOffline:
		return true
	}
	return false
}

// ParseStatus converts a wire value into a Status.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", value)
	}
	return s, nil
}

package model

// Status values written by the bot. Only StatusApplied is matched exactly;
// failures are recognised by the StatusFailedMarker substring.
const (
	StatusApplied      = "Applied"
	StatusFailedMarker = "Failed"
)

// DefaultWindowSize is the number of most recent records a dashboard follows.
const DefaultWindowSize = 100

// Collection and field names shared by every backend.
const (
	CollectionApplications = "applications"
	FieldTimestamp         = "timestamp"
)

package driven

import "context"

// FileEventType describes what happened to a watched file.
type FileEventType int

const (
	// FileCreated indicates a new file.
	FileCreated FileEventType = iota

	// FileUpdated indicates a modified file.
	FileUpdated
)

// String returns the string representation.
func (t FileEventType) String() string {
	switch t {
	case FileCreated:
		return "created"
	case FileUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// FileEvent is a settled change to a file in a watched directory.
type FileEvent struct {
	// Path is the absolute file path.
	Path string

	// Type is the kind of change.
	Type FileEventType
}

// FileWatcher reports file changes in a directory.
type FileWatcher interface {
	// Watch streams events for regular files in dir until ctx is cancelled.
	// Rapid successive writes to one file are coalesced into a single event.
	// The returned channel is closed when watching stops.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)
}

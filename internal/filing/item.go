package filing

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingSource   = errors.New("source file no longer exists")
	ErrNoActiveSession = errors.New("no active session")
	ErrLocked          = errors.New("source file is locked by another process")
)

// Origin records who discovered an item.
type Origin string

const (
	OriginWatch   Origin = "watch"
	OriginCapture Origin = "capture"
)

// Item is a pending file awaiting filing.
type Item struct {
	ID           string
	Path         string
	Origin       Origin
	DiscoveredAt time.Time
}

// NewItem stamps a path with a fresh ID and discovery time.
func NewItem(path string, origin Origin) Item {
	return Item{
		ID:           uuid.NewString(),
		Path:         path,
		Origin:       origin,
		DiscoveredAt: time.Now(),
	}
}

// State is the terminal outcome for an item.
type State int

const (
	StateMoved State = iota + 1
	StateDiscardedMissing
	StateDiscardedNoSession
	StateSkippedLocked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateMoved:
		return "moved"
	case StateDiscardedMissing:
		return "discarded-missing"
	case StateDiscardedNoSession:
		return "discarded-no-session"
	case StateSkippedLocked:
		return "skipped-locked"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result describes how an item was resolved.
type Result struct {
	Item        Item
	State       State
	SessionDir  string
	Destination string
	Attempts    int
	Err         error
}

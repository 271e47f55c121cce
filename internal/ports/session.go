package ports

import (
	"context"
	"time"

	"witchhunt/internal/domain"
)

// ParticipantRecord pins one human's seat claim inside a saved room.
type ParticipantRecord struct {
	PlayerID  string    `json:"player_id"`
	Name      string    `json:"name"`
	IsHost    bool      `json:"is_host"`
	LastWrite time.Time `json:"last_write"`
}

// RoomSnapshot is the persisted state of one room: enough to rebuild the
// match at any phase after a restart, with every seat intact.
type RoomSnapshot struct {
	RoomID       string              `json:"room_id"`
	Game         *domain.Game        `json:"game"`
	Participants []ParticipantRecord `json:"participants"`
	SavedAt      time.Time           `json:"saved_at"`
}

// SessionStore persists room snapshots across ticks and restarts.
type SessionStore interface {
	// SaveSnapshot writes the room's current snapshot, replacing any previous one.
	SaveSnapshot(ctx context.Context, snap RoomSnapshot) error

	// LoadSnapshot reads a room's snapshot. A missing snapshot is not an
	// error; it returns (nil, nil).
	LoadSnapshot(ctx context.Context, roomID string) (*RoomSnapshot, error)

	// DeleteSnapshot removes a room's snapshot once the room is finished.
	DeleteSnapshot(ctx context.Context, roomID string) error
}

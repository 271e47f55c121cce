package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"witchhunt/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// NakamaSessionStore persists room snapshots through Nakama's storage engine.
// Snapshots are system-owned so clients can never read another seat's cards.
type NakamaSessionStore struct {
	nk runtime.NakamaModule
}

func NewNakamaSessionStore(nk runtime.NakamaModule) *NakamaSessionStore {
	return &NakamaSessionStore{nk: nk}
}

func (a *NakamaSessionStore) SaveSnapshot(ctx context.Context, snap ports.RoomSnapshot) error {
	if snap.RoomID == "" {
		return fmt.Errorf("roomID is required")
	}

	value, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal room snapshot: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      StorageCollectionRooms,
			Key:             snap.RoomID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}

	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write room snapshot: %w", err)
	}
	return nil
}

func (a *NakamaSessionStore) LoadSnapshot(ctx context.Context, roomID string) (*ports.RoomSnapshot, error) {
	if roomID == "" {
		return nil, fmt.Errorf("roomID is required")
	}

	reads := []*runtime.StorageRead{
		{
			Collection: StorageCollectionRooms,
			Key:        roomID,
		},
	}

	objects, err := a.nk.StorageRead(ctx, reads)
	if err != nil {
		return nil, fmt.Errorf("failed to read room snapshot: %w", err)
	}
	if len(objects) == 0 {
		return nil, nil
	}

	var snap ports.RoomSnapshot
	if err := json.Unmarshal([]byte(objects[0].GetValue()), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room snapshot: %w", err)
	}
	return &snap, nil
}

func (a *NakamaSessionStore) DeleteSnapshot(ctx context.Context, roomID string) error {
	if roomID == "" {
		return fmt.Errorf("roomID is required")
	}

	deletes := []*runtime.StorageDelete{
		{
			Collection: StorageCollectionRooms,
			Key:        roomID,
		},
	}

	if err := a.nk.StorageDelete(ctx, deletes); err != nil {
		return fmt.Errorf("failed to delete room snapshot: %w", err)
	}
	return nil
}

// Verify interface compliance at compile time.
var _ ports.SessionStore = (*NakamaSessionStore)(nil)

package storage

import (
	"context"

	"github.com/poiesic/recollect/core"
)

// IndexSnapshotRepository persists fuzzy location index snapshots, one
// per conversation name. Implementations must be thread-safe and
// support concurrent access.
type IndexSnapshotRepository interface {
	// SaveSnapshot stores a snapshot under the conversation name,
	// replacing any previous one.
	SaveSnapshot(ctx context.Context, conversation string, data *core.TextToLocationIndexData) error

	// LoadSnapshot retrieves the snapshot for a conversation.
	// Returns ErrNotFound if no snapshot exists and ErrCorruptSnapshot
	// if the stored bytes fail verification.
	LoadSnapshot(ctx context.Context, conversation string) (*core.TextToLocationIndexData, error)

	// DeleteSnapshot removes a conversation's snapshot.
	// Returns ErrNotFound if no snapshot exists.
	DeleteSnapshot(ctx context.Context, conversation string) error

	// ListSnapshots returns the names of all conversations with a
	// stored snapshot, sorted.
	ListSnapshots(ctx context.Context) ([]string, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

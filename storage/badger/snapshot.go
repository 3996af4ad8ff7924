// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// SnapshotRepository implements storage.IndexSnapshotRepository for
// BadgerDB.
type SnapshotRepository struct {
	backend *Backend
}

var _ storage.IndexSnapshotRepository = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a snapshot repository on the backend.
func NewSnapshotRepository(backend *Backend) storage.IndexSnapshotRepository {
	return &SnapshotRepository{backend: backend}
}

// SaveSnapshot stores a snapshot under the conversation name,
// replacing any previous one.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, conversation string, data *core.TextToLocationIndexData) error {
	if conversation == "" {
		return storage.ErrConversationNameRequired
	}
	if err := data.Validate(); err != nil {
		return err
	}

	envelope := storage.MarshalSnapshot(data)
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeSnapshotKey(conversation), envelope); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadSnapshot retrieves and verifies the snapshot for a conversation.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, conversation string) (*core.TextToLocationIndexData, error) {
	if conversation == "" {
		return nil, storage.ErrConversationNameRequired
	}

	var data *core.TextToLocationIndexData
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSnapshotKey(conversation))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			data, unmarshalErr = storage.UnmarshalSnapshot(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteSnapshot removes a conversation's snapshot.
func (r *SnapshotRepository) DeleteSnapshot(ctx context.Context, conversation string) error {
	if conversation == "" {
		return storage.ErrConversationNameRequired
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSnapshotKey(conversation)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListSnapshots returns all conversation names with a stored snapshot.
func (r *SnapshotRepository) ListSnapshots(ctx context.Context) ([]string, error) {
	var names []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(snapshotPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := string(iter.Item().Key())
			names = append(names, strings.TrimPrefix(key, snapshotPrefix+":"))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Strings(names)
	return names, nil
}

// Close closes the underlying backend.
func (r *SnapshotRepository) Close() error {
	return r.backend.Close()
}

//go:generate go run go.uber.org/mock/mockgen -source=snapshot.go -destination=../mocks/mock_snapshot_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"rtchat/domain"
)

// snapshotKey carries a version tag so a future schema change reads old
// data as absent instead of crashing on a malformed shape.
const snapshotKey = "rtchat:v4:channels"

type ISnapshotRepository interface {
	Load() domain.Snapshot
	Save(snapshot domain.Snapshot) error
}

// SnapshotRepository persists the whole channel set as a single JSON blob
// under a fixed key. The store is a replica-local durable cache, not a
// synchronization primitive: it is read once at startup and thereafter
// only written.
type SnapshotRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSnapshotRepository(db *badger.DB, log *slog.Logger) SnapshotRepository {
	return SnapshotRepository{db: db, log: log}
}

// Load reads and parses the persisted blob. An absent key or a malformed
// value yields an empty snapshot, never an error: a fresh replica must
// always be able to start.
func (r SnapshotRepository) Load() domain.Snapshot {
	var raw []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append(raw, val...)
			return nil
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			r.log.Warn("Snapshot unreadable, starting empty", "error", err)
		}
		return domain.NewSnapshot()
	}

	snapshot := domain.NewSnapshot()
	if err = json.Unmarshal(raw, &snapshot); err != nil {
		r.log.Warn("Snapshot malformed, starting empty", "error", err)
		return domain.NewSnapshot()
	}
	return snapshot
}

// Save serializes the full snapshot and replaces any prior value.
func (r SnapshotRepository) Save(snapshot domain.Snapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotKey), raw)
	})
}

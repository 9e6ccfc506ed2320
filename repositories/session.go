//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"time"

	"github.com/dgraph-io/badger/v4"

	"rtchat/domain"
)

const sessionKey = "rtchat:v4:session"

type ISessionRepository interface {
	SaveActiveUser(user domain.UserKey) error
	LoadActiveUser() (domain.UserKey, bool)
}

// SessionRepository records the currently active user so the next load
// within the same run can pre-select the identity. The entry carries a TTL:
// the marker is scoped to one client run, not shared state.
type SessionRepository struct {
	db  *badger.DB
	ttl time.Duration
}

func NewSessionRepository(db *badger.DB, ttl time.Duration) SessionRepository {
	return SessionRepository{db: db, ttl: ttl}
}

func (r SessionRepository) SaveActiveUser(user domain.UserKey) error {
	return r.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(sessionKey), []byte(user)).WithTTL(r.ttl)
		return txn.SetEntry(entry)
	})
}

func (r SessionRepository) LoadActiveUser() (domain.UserKey, bool) {
	var user domain.UserKey
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			user = domain.UserKey(val)
			return nil
		})
	})
	return user, err == nil && user != ""
}

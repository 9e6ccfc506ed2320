//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_registry.go -package=mocks
// Package registry is the channel membership and message core. A ChatSession
// is one replica's view: the in-memory snapshot plus the session-local
// active user and channel selection. Local operations run on the caller's
// goroutine while ingestion runs on the replica's worker, so a single
// mutex guards the snapshot; concurrency across replicas is reconciled
// through the sync bus, never through shared memory.
package registry

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"rtchat/contract"
	"rtchat/domain"
	"rtchat/domain/event"
	"rtchat/errors"
	"rtchat/repositories"
)

type IChannelRegistry interface {
	Login(user domain.UserKey)
	CreateChannel(name string, public bool) (*domain.Channel, error)
	DeleteChannel(id string) error
	JoinChannel(id string, user domain.UserKey) error
	AddMember(channelID string, user domain.UserKey) error
	RemoveMember(channelID string, target domain.UserKey) error
	PostMessage(channelID, text string) (*domain.Message, error)
	ListChannels() []*domain.Channel
	GetChannel(id string) (*domain.Channel, bool)
	Apply(e event.SyncEvent) bool
}

type ChatSession struct {
	mu        sync.Mutex
	log       *slog.Logger
	snapshot  domain.Snapshot
	users     []domain.UserIdentity
	snapshots repositories.ISnapshotRepository
	sessions  repositories.ISessionRepository
	publisher contract.Publisher

	activeUser    domain.UserKey
	activeChannel string
}

// NewChatSession builds one replica from its durable store. A session
// marker left by a previous load within the same run pre-selects the
// active user, provided the identity is still in the directory.
func NewChatSession(log *slog.Logger, snapshots repositories.ISnapshotRepository,
	sessions repositories.ISessionRepository, publisher contract.Publisher,
	users []domain.UserIdentity) *ChatSession {
	s := &ChatSession{
		log:       log,
		snapshot:  snapshots.Load(),
		users:     users,
		snapshots: snapshots,
		sessions:  sessions,
		publisher: publisher,
	}
	if prev, ok := sessions.LoadActiveUser(); ok && s.knownUser(prev) {
		s.activeUser = prev
	}
	return s
}

func (s *ChatSession) knownUser(user domain.UserKey) bool {
	return lo.ContainsBy(s.users, func(u domain.UserIdentity) bool {
		return u.ID == user
	})
}

// Login marks user as this replica's active identity. Identity is
// self-asserted: there is no credential check.
func (s *ChatSession) Login(user domain.UserKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeUser = user
	if err := s.sessions.SaveActiveUser(user); err != nil {
		s.log.Error("Session marker not saved", "error", err)
	}
}

func (s *ChatSession) ActiveUser() domain.UserKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeUser
}

func (s *ChatSession) ActiveChannel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeChannel
}

// SelectChannel points the replica's view at a channel. Selection is
// session-local: never persisted with the snapshot, never synced.
func (s *ChatSession) SelectChannel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshot[id]; ok {
		s.activeChannel = id
	}
}

// CreateChannel registers a fresh channel owned by the active user and
// opens it. The name must be non-empty after trimming. Returns a copy of
// the stored channel, like GetChannel.
func (s *ChatSession) CreateChannel(name string, public bool) (*domain.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeUser == "" {
		return nil, errors.ErrNoActiveUser
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.ErrInvalidInput
	}

	channel := domain.NewChannel(uuid.NewString(), name, s.activeUser, public)
	s.snapshot[channel.ID] = channel
	s.activeChannel = channel.ID

	s.persist()
	s.publisher.Publish(event.ChannelCreated{Channel: channel.Clone()})
	return channel.Clone(), nil
}

// DeleteChannel removes a channel and all its messages. Owner only.
func (s *ChatSession) DeleteChannel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, ok := s.snapshot[id]
	if !ok {
		return errors.ErrChannelNotFound
	}
	if channel.Owner != s.activeUser {
		return errors.ErrUnauthorized
	}

	delete(s.snapshot, id)
	if s.activeChannel == id {
		s.activeChannel = ""
	}

	s.persist()
	s.publisher.Publish(event.ChannelDeleted{ID: id})
	return nil
}

// JoinChannel adds user to the roster. Whether join may be offered at all
// (public channels only) is caller policy; the registry only keeps the
// roster consistent.
func (s *ChatSession) JoinChannel(id string, user domain.UserKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, ok := s.snapshot[id]
	if !ok {
		return errors.ErrChannelNotFound
	}
	if !channel.AddMember(user) {
		return errors.ErrAlreadyMember
	}

	s.persist()
	s.publisher.Publish(event.MembersChanged{ID: id, Members: slices.Clone(channel.Members)})
	return nil
}

// AddMember invites user into a channel, public or private. The requester
// is the active user and must already be a member; the original design let
// any session context invite, which left rosters open to strangers.
func (s *ChatSession) AddMember(channelID string, user domain.UserKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, ok := s.snapshot[channelID]
	if !ok {
		return errors.ErrChannelNotFound
	}
	if !channel.IsMember(s.activeUser) {
		return errors.ErrNotMember
	}
	if !channel.AddMember(user) {
		return errors.ErrAlreadyMember
	}

	s.persist()
	s.publisher.Publish(event.MembersChanged{ID: channelID, Members: slices.Clone(channel.Members)})
	return nil
}

// RemoveMember kicks target from a private channel. Owner only, and the
// owner themselves can never be removed. Public membership is self-service
// and not owner-revocable.
func (s *ChatSession) RemoveMember(channelID string, target domain.UserKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, ok := s.snapshot[channelID]
	if !ok {
		return errors.ErrChannelNotFound
	}
	if channel.Owner != s.activeUser {
		return errors.ErrUnauthorized
	}
	if channel.Public {
		return errors.ErrPublicChannel
	}
	if target == channel.Owner {
		return errors.ErrUnauthorized
	}
	if !channel.RemoveMember(target) {
		return errors.ErrNotMember
	}

	s.persist()
	s.publisher.Publish(event.MembersChanged{ID: channelID, Members: slices.Clone(channel.Members)})
	return nil
}

// PostMessage appends exactly one message authored by the active user.
func (s *ChatSession) PostMessage(channelID, text string) (*domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, ok := s.snapshot[channelID]
	if !ok {
		return nil, errors.ErrChannelNotFound
	}
	if !channel.IsMember(s.activeUser) {
		return nil, errors.ErrNotMember
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.ErrInvalidInput
	}

	message := domain.Message{
		ID:     uuid.NewString(),
		Author: s.activeUser,
		Text:   text,
		At:     time.Now().UTC(),
	}
	channel.Append(message)

	s.persist()
	s.publisher.Publish(event.MessageAppended{ID: channelID, Message: message})
	return &message, nil
}

// ListChannels returns every channel regardless of membership, sorted by
// name case-insensitively, ties broken by id for a stable order. Channels
// are deep copies: the ingest worker keeps mutating the snapshot under the
// mutex, so live pointers must never escape it.
func (s *ChatSession) ListChannels() []*domain.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	channels := lo.Map(lo.Values(s.snapshot), func(c *domain.Channel, _ int) *domain.Channel {
		return c.Clone()
	})
	slices.SortFunc(channels, func(a, b *domain.Channel) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return channels
}

// GetChannel returns a deep copy of one channel. Callers re-fetch to
// observe later mutations, local or ingested.
func (s *ChatSession) GetChannel(id string) (*domain.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, ok := s.snapshot[id]
	if !ok {
		return nil, false
	}
	return channel.Clone(), true
}

// SearchUsers filters the directory by a case-insensitive substring of the
// display name, excluding users already in the active channel. Backs the
// owner's search-and-add box.
func (s *ChatSession) SearchUsers(query string) []domain.UserIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	active := s.snapshot[s.activeChannel]
	return lo.Filter(s.users, func(u domain.UserIdentity, _ int) bool {
		if !strings.Contains(strings.ToLower(u.Name), query) {
			return false
		}
		return active == nil || !active.IsMember(u.ID)
	})
}

// Apply ingests one event from another replica, mirroring the mutation
// shape the local operation would have produced, then persists. Reports
// whether the active channel was affected so the caller can re-render.
// Unknown channel ids are dropped: there is no replay to recover them.
func (s *ChatSession) Apply(e event.SyncEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch evt := e.(type) {
	case event.ChannelCreated:
		s.snapshot[evt.Channel.ID] = evt.Channel.Clone()
	case event.ChannelDeleted:
		if _, ok := s.snapshot[evt.ID]; !ok {
			return false
		}
		delete(s.snapshot, evt.ID)
		if s.activeChannel == evt.ID {
			s.activeChannel = ""
			s.persist()
			return true
		}
	case event.MembersChanged:
		channel, ok := s.snapshot[evt.ID]
		if !ok {
			return false
		}
		channel.SetMembers(evt.Members)
	case event.MessageAppended:
		channel, ok := s.snapshot[evt.ID]
		if !ok {
			return false
		}
		channel.Append(evt.Message)
	default:
		return false
	}

	s.persist()
	return e.ChannelID() == s.activeChannel
}

// persist writes the whole snapshot back after a mutation. A store failure
// is logged, never raised: the in-memory state stays usable either way.
func (s *ChatSession) persist() {
	if err := s.snapshots.Save(s.snapshot); err != nil {
		s.log.Error("Snapshot not persisted", "error", err)
	}
}

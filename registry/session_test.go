package registry

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"rtchat/domain"
	"rtchat/domain/event"
	"rtchat/errors"
)

type memSnapshots struct {
	snapshot domain.Snapshot
	saves    int
}

func (m *memSnapshots) Load() domain.Snapshot {
	if m.snapshot == nil {
		return domain.NewSnapshot()
	}
	return m.snapshot.Clone()
}

func (m *memSnapshots) Save(s domain.Snapshot) error {
	m.snapshot = s.Clone()
	m.saves++
	return nil
}

type memSessions struct {
	user domain.UserKey
	set  bool
}

func (m *memSessions) SaveActiveUser(u domain.UserKey) error {
	m.user, m.set = u, true
	return nil
}

func (m *memSessions) LoadActiveUser() (domain.UserKey, bool) {
	return m.user, m.set
}

type recordingBus struct {
	events []event.SyncEvent
}

func (r *recordingBus) Publish(e event.SyncEvent) {
	r.events = append(r.events, e)
}

func testUsers() []domain.UserIdentity {
	return []domain.UserIdentity{
		{ID: "alice", Name: "Alice Cooper"},
		{ID: "bob", Name: "Bob Marley"},
		{ID: "carol", Name: "Carl Sagan"},
		{ID: "diana", Name: "Diana Prince"},
	}
}

func newTestSession(t *testing.T) (*ChatSession, *memSnapshots, *recordingBus) {
	t.Helper()
	snapshots := &memSnapshots{}
	bus := &recordingBus{}
	session := NewChatSession(slog.Default(), snapshots, &memSessions{}, bus, testUsers())
	return session, snapshots, bus
}

func ownerAlwaysMember(t *testing.T, session *ChatSession) {
	t.Helper()
	for _, channel := range session.ListChannels() {
		require.Contains(t, channel.Members, channel.Owner)
	}
}

// currentChannel re-fetches the stored state; accessors hand out copies,
// so a channel held across mutations goes stale.
func currentChannel(t *testing.T, session *ChatSession, id string) *domain.Channel {
	t.Helper()
	channel, ok := session.GetChannel(id)
	require.True(t, ok)
	return channel
}

func Test_CreateChannel(t *testing.T) {
	req := require.New(t)
	session, snapshots, bus := newTestSession(t)
	session.Login("alice")

	channel, err := session.CreateChannel("general", true)
	req.NoError(err)
	req.Equal("general", channel.Name)
	req.True(channel.Public)
	req.Equal([]domain.UserKey{"alice"}, channel.Members)
	req.Equal(channel.ID, session.ActiveChannel())
	req.Equal(1, snapshots.saves)
	req.Len(bus.events, 1)

	created, ok := bus.events[0].(event.ChannelCreated)
	req.True(ok)
	req.Equal(channel.ID, created.ChannelID())
	ownerAlwaysMember(t, session)
}

func Test_CreateChannel_Refusals(t *testing.T) {
	req := require.New(t)
	session, snapshots, bus := newTestSession(t)

	_, err := session.CreateChannel("general", true)
	req.ErrorIs(err, errors.ErrNoActiveUser)

	session.Login("alice")
	_, err = session.CreateChannel("   ", false)
	req.ErrorIs(err, errors.ErrInvalidInput)

	req.Zero(snapshots.saves)
	req.Empty(bus.events)
	req.Empty(session.ListChannels())
}

func Test_DeleteChannel_Owner_Only(t *testing.T) {
	req := require.New(t)
	session, _, bus := newTestSession(t)
	session.Login("alice")
	channel, err := session.CreateChannel("general", true)
	req.NoError(err)

	session.Login("bob")
	req.ErrorIs(session.DeleteChannel(channel.ID), errors.ErrUnauthorized)
	_, ok := session.GetChannel(channel.ID)
	req.True(ok)

	session.Login("alice")
	req.NoError(session.DeleteChannel(channel.ID))
	_, ok = session.GetChannel(channel.ID)
	req.False(ok)
	req.Empty(session.ActiveChannel(), "deleting the open channel clears the selection")

	deleted, ok := lo.Last(bus.events)
	req.True(ok)
	req.IsType(event.ChannelDeleted{}, deleted)
}

func Test_DeleteChannel_Unknown_Id(t *testing.T) {
	req := require.New(t)
	session, snapshots, bus := newTestSession(t)
	session.Login("alice")

	req.ErrorIs(session.DeleteChannel("ch_missing"), errors.ErrChannelNotFound)
	req.Zero(snapshots.saves)
	req.Empty(bus.events)
}

func Test_JoinChannel(t *testing.T) {
	req := require.New(t)
	session, _, bus := newTestSession(t)
	session.Login("alice")
	channel, err := session.CreateChannel("news", true)
	req.NoError(err)

	req.ErrorIs(session.JoinChannel("ch_missing", "carol"), errors.ErrChannelNotFound)

	req.NoError(session.JoinChannel(channel.ID, "carol"))
	req.Equal([]domain.UserKey{"alice", "carol"}, currentChannel(t, session, channel.ID).Members)

	published := len(bus.events)
	req.ErrorIs(session.JoinChannel(channel.ID, "carol"), errors.ErrAlreadyMember)
	req.Equal([]domain.UserKey{"alice", "carol"}, currentChannel(t, session, channel.ID).Members)
	req.Len(bus.events, published, "refused join publishes nothing")
	ownerAlwaysMember(t, session)
}

func Test_AddMember_Requires_Requester_Membership(t *testing.T) {
	req := require.New(t)
	session, _, _ := newTestSession(t)
	session.Login("alice")
	channel, err := session.CreateChannel("team", false)
	req.NoError(err)

	session.Login("carol")
	req.ErrorIs(session.AddMember(channel.ID, "diana"), errors.ErrNotMember)
	req.Equal([]domain.UserKey{"alice"}, currentChannel(t, session, channel.ID).Members)

	session.Login("alice")
	req.NoError(session.AddMember(channel.ID, "bob"))
	req.Equal([]domain.UserKey{"alice", "bob"}, currentChannel(t, session, channel.ID).Members)

	// Any member may invite, not just the owner.
	session.Login("bob")
	req.NoError(session.AddMember(channel.ID, "diana"))
	req.Equal([]domain.UserKey{"alice", "bob", "diana"}, currentChannel(t, session, channel.ID).Members)
}

func Test_RemoveMember_Rules(t *testing.T) {
	req := require.New(t)
	session, _, bus := newTestSession(t)
	session.Login("alice")

	private, err := session.CreateChannel("team", false)
	req.NoError(err)
	req.NoError(session.AddMember(private.ID, "bob"))

	public, err := session.CreateChannel("news", true)
	req.NoError(err)
	req.NoError(session.AddMember(public.ID, "bob"))

	// Public membership is self-service: the owner cannot revoke it.
	published := len(bus.events)
	req.ErrorIs(session.RemoveMember(public.ID, "bob"), errors.ErrPublicChannel)
	req.Equal([]domain.UserKey{"alice", "bob"}, currentChannel(t, session, public.ID).Members)
	req.Len(bus.events, published)

	// The owner can never be removed, not even by themselves.
	req.ErrorIs(session.RemoveMember(private.ID, "alice"), errors.ErrUnauthorized)
	req.Contains(currentChannel(t, session, private.ID).Members, domain.UserKey("alice"))

	// Kicking someone who never joined is a distinct refusal.
	req.ErrorIs(session.RemoveMember(private.ID, "carol"), errors.ErrNotMember)

	// Only the owner kicks.
	session.Login("bob")
	req.ErrorIs(session.RemoveMember(private.ID, "alice"), errors.ErrUnauthorized)

	session.Login("alice")
	req.NoError(session.RemoveMember(private.ID, "bob"))
	req.Equal([]domain.UserKey{"alice"}, currentChannel(t, session, private.ID).Members)
	ownerAlwaysMember(t, session)
}

func Test_PostMessage(t *testing.T) {
	req := require.New(t)
	session, _, bus := newTestSession(t)
	session.Login("alice")
	channel, err := session.CreateChannel("general", true)
	req.NoError(err)

	session.Login("carol")
	_, err = session.PostMessage(channel.ID, "hi")
	req.ErrorIs(err, errors.ErrNotMember)
	req.Empty(currentChannel(t, session, channel.ID).Messages)

	session.Login("alice")
	_, err = session.PostMessage(channel.ID, "   \t ")
	req.ErrorIs(err, errors.ErrInvalidInput)
	req.Empty(currentChannel(t, session, channel.ID).Messages)

	message, err := session.PostMessage(channel.ID, "  hello world ")
	req.NoError(err)
	req.Len(currentChannel(t, session, channel.ID).Messages, 1)
	req.Equal("hello world", message.Text)
	req.Equal(domain.UserKey("alice"), message.Author)
	req.NotEmpty(message.ID)

	appended, ok := lo.Last(bus.events)
	req.True(ok)
	req.IsType(event.MessageAppended{}, appended)
}

func Test_ListChannels_Order(t *testing.T) {
	req := require.New(t)
	session, _, _ := newTestSession(t)
	session.Login("alice")

	for _, name := range []string{"Zeta", "alpha", "Beta"} {
		_, err := session.CreateChannel(name, true)
		req.NoError(err)
	}

	names := lo.Map(session.ListChannels(), func(c *domain.Channel, _ int) string {
		return c.Name
	})
	req.Equal([]string{"alpha", "Beta", "Zeta"}, names)
}

func Test_Accessors_Hand_Out_Copies(t *testing.T) {
	req := require.New(t)
	session, _, _ := newTestSession(t)
	session.Login("alice")

	created, err := session.CreateChannel("general", true)
	req.NoError(err)

	// A held channel does not observe later mutations.
	held, ok := session.GetChannel(created.ID)
	req.True(ok)
	_, err = session.PostMessage(created.ID, "hello")
	req.NoError(err)
	req.Empty(held.Messages)

	// Scribbling on returned copies never reaches the stored state.
	held.Members = append(held.Members, "bob")
	held.Name = "hijacked"
	listed := session.ListChannels()
	req.Len(listed, 1)
	listed[0].Messages = nil

	stored := currentChannel(t, session, created.ID)
	req.Equal("general", stored.Name)
	req.Equal([]domain.UserKey{"alice"}, stored.Members)
	req.Len(stored.Messages, 1)
}

func Test_Private_Channel_Scenario(t *testing.T) {
	req := require.New(t)
	session, _, _ := newTestSession(t)

	session.Login("alice")
	team, err := session.CreateChannel("team", false)
	req.NoError(err)
	req.Equal([]domain.UserKey{"alice"}, team.Members)

	req.NoError(session.AddMember(team.ID, "bob"))
	req.Equal([]domain.UserKey{"alice", "bob"}, currentChannel(t, session, team.ID).Members)

	session.Login("bob")
	message, err := session.PostMessage(team.ID, "hi")
	req.NoError(err)
	req.Len(currentChannel(t, session, team.ID).Messages, 1)
	req.Equal(domain.UserKey("bob"), message.Author)
	req.Equal("hi", message.Text)

	session.Login("alice")
	req.NoError(session.RemoveMember(team.ID, "bob"))
	req.Equal([]domain.UserKey{"alice"}, currentChannel(t, session, team.ID).Members)
}

func Test_Public_Channel_Scenario(t *testing.T) {
	req := require.New(t)
	session, _, _ := newTestSession(t)

	session.Login("alice")
	news, err := session.CreateChannel("news", true)
	req.NoError(err)

	session.Login("carol")
	_, err = session.PostMessage(news.ID, "first!")
	req.ErrorIs(err, errors.ErrNotMember)
	req.Empty(currentChannel(t, session, news.ID).Messages)

	req.NoError(session.JoinChannel(news.ID, "carol"))
	req.Contains(currentChannel(t, session, news.ID).Members, domain.UserKey("carol"))

	_, err = session.PostMessage(news.ID, "first!")
	req.NoError(err)
	req.Len(currentChannel(t, session, news.ID).Messages, 1)
}

func Test_Apply_Ingests_Remote_Mutations(t *testing.T) {
	req := require.New(t)
	session, snapshots, bus := newTestSession(t)
	session.Login("alice")

	remote := domain.NewChannel("ch_remote", "general", "bob", true)
	req.False(session.Apply(event.ChannelCreated{Channel: remote}))

	ingested, ok := session.GetChannel("ch_remote")
	req.True(ok)
	req.Equal("general", ingested.Name)
	req.Equal([]domain.UserKey{"bob"}, ingested.Members)
	req.NotSame(remote, ingested, "ingestion copies, replicas share no memory")

	session.SelectChannel("ch_remote")
	affected := session.Apply(event.MembersChanged{ID: "ch_remote", Members: []domain.UserKey{"bob", "alice"}})
	req.True(affected)
	req.Equal([]domain.UserKey{"bob", "alice"}, currentChannel(t, session, "ch_remote").Members)

	affected = session.Apply(event.MessageAppended{ID: "ch_remote", Message: domain.Message{ID: "m1", Author: "bob", Text: "yo"}})
	req.True(affected)
	req.Len(currentChannel(t, session, "ch_remote").Messages, 1)

	affected = session.Apply(event.ChannelDeleted{ID: "ch_remote"})
	req.True(affected)
	req.Empty(session.ActiveChannel())
	_, ok = session.GetChannel("ch_remote")
	req.False(ok)

	req.Equal(4, snapshots.saves, "every ingestion persists")
	req.Empty(bus.events, "ingestion never re-publishes")
}

func Test_Apply_Drops_Unknown_Channel(t *testing.T) {
	req := require.New(t)
	session, snapshots, _ := newTestSession(t)

	req.False(session.Apply(event.MessageAppended{ID: "ch_ghost", Message: domain.Message{ID: "m1"}}))
	req.False(session.Apply(event.MembersChanged{ID: "ch_ghost", Members: []domain.UserKey{"bob"}}))
	req.False(session.Apply(event.ChannelDeleted{ID: "ch_ghost"}))
	req.Zero(snapshots.saves)
}

func Test_Session_Marker_Preselects_User(t *testing.T) {
	req := require.New(t)
	snapshots := &memSnapshots{}
	sessions := &memSessions{}
	bus := &recordingBus{}

	first := NewChatSession(slog.Default(), snapshots, sessions, bus, testUsers())
	first.Login("diana")

	second := NewChatSession(slog.Default(), snapshots, sessions, bus, testUsers())
	req.Equal(domain.UserKey("diana"), second.ActiveUser())
}

func Test_Session_Marker_Ignores_Unknown_User(t *testing.T) {
	req := require.New(t)
	sessions := &memSessions{}
	req.NoError(sessions.SaveActiveUser("stranger"))

	session := NewChatSession(slog.Default(), &memSnapshots{}, sessions, &recordingBus{}, testUsers())
	req.Empty(session.ActiveUser())
}

func Test_SearchUsers(t *testing.T) {
	req := require.New(t)
	session, _, _ := newTestSession(t)
	session.Login("alice")
	channel, err := session.CreateChannel("team", false)
	req.NoError(err)
	req.NoError(session.AddMember(channel.ID, "bob"))
	session.SelectChannel(channel.ID)

	names := lo.Map(session.SearchUsers("  CO"), func(u domain.UserIdentity, _ int) string {
		return u.Name
	})
	// "co" matches Alice Cooper (member, excluded) and nobody else; "ar"
	// style checks below cover the positive path.
	req.Empty(names)

	results := session.SearchUsers("ar")
	req.True(lo.EveryBy(results, func(u domain.UserIdentity) bool {
		return strings.Contains(strings.ToLower(u.Name), "ar")
	}))
	req.NotContains(lo.Map(results, func(u domain.UserIdentity, _ int) domain.UserKey { return u.ID }),
		domain.UserKey("bob"), "current members are excluded")
	req.Empty(session.SearchUsers("   "))
}

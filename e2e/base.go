package e2e

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"

	"rtchat/bus"
	"rtchat/directory"
	"rtchat/registry"
	"rtchat/repositories"
	"rtchat/runtime"
)

type BaseSuite struct {
	suite.Suite
	Config Config
	broker *bus.Broker
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
}

func (s *BaseSuite) SetupTest() {
	s.broker = bus.NewBroker(slog.Default())
}

// Step prints a colorized header so scenario progress is readable in logs.
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// NewReplica builds a full replica on its own temporary store, attached to
// the suite broker, and starts it. The badger handle is returned so a test
// can re-open the store and assert on persisted state.
func (s *BaseSuite) NewReplica() (*runtime.Replica, *badger.DB) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	feed := s.broker.Join(s.Config.Topic, s.Config.BufferSize)
	session := registry.NewChatSession(log,
		repositories.NewSnapshotRepository(db, log),
		repositories.NewSessionRepository(db, time.Hour),
		feed, directory.Fallback())
	return runtime.NewReplica(log, session, feed, 10*time.Millisecond), db
}

// Converged polls both replicas until the predicate holds on each.
func (s *BaseSuite) Converged(replicas []*runtime.Replica, predicate func(r *runtime.Replica) bool) {
	s.Require().Eventually(func() bool {
		for _, r := range replicas {
			if !predicate(r) {
				return false
			}
		}
		return true
	}, 2*time.Second, 5*time.Millisecond)
}

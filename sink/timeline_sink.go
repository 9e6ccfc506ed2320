package sink

import (
	"context"
	"slices"
	"sync"

	"rtchat/domain"
	"rtchat/domain/event"
)

// Timeline projects the message stream of one followed channel out of
// ingested events. It is a projection for display purposes; the registry
// snapshot stays the source of truth. A viewer goroutine may read it while
// the ingest worker feeds it.
type Timeline struct {
	mu        sync.Mutex
	channelID string
	messages  []domain.Message
}

func NewTimeline(channelID string) *Timeline {
	return &Timeline{channelID: channelID}
}

// Follow retargets the timeline, dropping whatever was collected for the
// previous channel.
func (t *Timeline) Follow(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.channelID = channelID
	t.messages = nil
}

func (t *Timeline) Messages() []domain.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.messages)
}

func (t *Timeline) Consume(_ context.Context, e event.SyncEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if evt, ok := e.(event.MessageAppended); ok && evt.ID == t.channelID {
		t.messages = append(t.messages, evt.Message)
	}
	return nil
}

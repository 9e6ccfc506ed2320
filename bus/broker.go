// Package bus is the sync fan-out between replicas. Every replica attached
// to the same topic name receives all events published by the others;
// a publisher never receives its own event. Delivery is best effort:
// no acknowledgement, no replay, no ordering across senders. A feed that
// was not attached at publish time never sees that event.
package bus

import (
	"log/slog"
	"sync"

	"rtchat/domain/event"
)

type Broker struct {
	mu     sync.Mutex
	log    *slog.Logger
	topics map[string][]*Feed
}

func NewBroker(log *slog.Logger) *Broker {
	return &Broker{log: log, topics: make(map[string][]*Feed)}
}

// Join attaches a new feed to the named topic. The buffer bounds how many
// undelivered events a slow replica may hold before the broker starts
// dropping on it.
func (b *Broker) Join(topic string, buffer int) *Feed {
	b.mu.Lock()
	defer b.mu.Unlock()

	feed := &Feed{
		broker: b,
		topic:  topic,
		inbox:  make(chan event.SyncEvent, buffer),
	}
	b.topics[topic] = append(b.topics[topic], feed)
	return feed
}

// publish fans out to every feed on the topic except the sender.
// A full inbox drops the event rather than blocking the publisher.
func (b *Broker) publish(sender *Feed, e event.SyncEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, feed := range b.topics[sender.topic] {
		if feed == sender {
			continue
		}
		select {
		case feed.inbox <- e:
		default:
			b.log.Warn("Replica inbox full, dropping sync event",
				"topic", sender.topic, "channel", e.ChannelID())
		}
	}
}

func (b *Broker) leave(feed *Feed) {
	b.mu.Lock()
	defer b.mu.Unlock()

	feeds := b.topics[feed.topic]
	for i, f := range feeds {
		if f == feed {
			b.topics[feed.topic] = append(feeds[:i], feeds[i+1:]...)
			break
		}
	}
	if len(b.topics[feed.topic]) == 0 {
		delete(b.topics, feed.topic)
	}
	close(feed.inbox)
}

// Feed is one replica's attachment to a topic.
type Feed struct {
	broker *Broker
	topic  string
	inbox  chan event.SyncEvent
}

// Publish broadcasts a mutation to the other replicas. Fire and forget.
func (f *Feed) Publish(e event.SyncEvent) {
	f.broker.publish(f, e)
}

// Events exposes the inbound side: events published by other replicas on
// the same topic. The channel closes when the feed leaves.
func (f *Feed) Events() <-chan event.SyncEvent {
	return f.inbox
}

func (f *Feed) Leave() {
	f.broker.leave(f)
}

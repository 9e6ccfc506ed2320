// Package runtime wires one replica together: a chat session fed by the
// sync bus under worker supervision. It orchestrates without containing
// domain rules.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"rtchat/bus"
	"rtchat/contract"
	"rtchat/domain/event"
	"rtchat/registry"
	"rtchat/runtime/workers"
)

// Replica is one running instance of the channel registry. Several
// replicas attached to the same broker topic converge through event
// ingestion; each keeps its own in-memory snapshot.
type Replica struct {
	log        *slog.Logger
	session    *registry.ChatSession
	feed       *bus.Feed
	supervisor *workers.Supervisor
	ingest     *workers.IngestWorker
	done       chan struct{}
}

func NewReplica(log *slog.Logger, session *registry.ChatSession, feed *bus.Feed,
	restartInterval time.Duration) *Replica {
	return &Replica{
		log:        log,
		session:    session,
		feed:       feed,
		supervisor: workers.NewSupervisor(log, restartInterval),
		ingest:     workers.NewIngestWorker(log, feed.Events(), session),
		done:       make(chan struct{}),
	}
}

func (r *Replica) Session() *registry.ChatSession { return r.session }

// AddSinks registers presentation-side consumers notified after every
// ingested event. Must be called before Start.
func (r *Replica) AddSinks(sinks ...contract.EventSink) *Replica {
	r.ingest.AddSinks(sinks...)
	return r
}

// OnActiveChannel registers the re-render hook fired when an ingested
// event touches the channel this replica has open.
func (r *Replica) OnActiveChannel(hook func(e event.SyncEvent)) *Replica {
	r.ingest.OnActiveChannel(hook)
	return r
}

// Start launches ingestion in the background. Returns immediately.
func (r *Replica) Start(ctx context.Context) {
	r.supervisor.Add(r.ingest)
	go func() {
		defer close(r.done)
		r.supervisor.Run(ctx)
	}()
}

// Stop detaches from the bus and waits for ingestion to drain out.
func (r *Replica) Stop() {
	r.feed.Leave()
	<-r.done
}

package workers

import (
	"context"
	"log/slog"

	"rtchat/contract"
	"rtchat/domain/event"
)

// Applier is the ingestion side of the channel registry: one remote event
// in, reporting whether the replica's active channel was touched.
type Applier interface {
	Apply(e event.SyncEvent) bool
}

// IngestWorker drains inbound sync events, applies each to the local
// registry, then fans it out to the registered sinks. When the applied
// event touches the active channel, the render hook fires so the
// presentation layer can repaint.
type IngestWorker struct {
	log      *slog.Logger
	events   <-chan event.SyncEvent
	applier  Applier
	sinks    []contract.EventSink
	onActive func(e event.SyncEvent)
}

func NewIngestWorker(log *slog.Logger, events <-chan event.SyncEvent, applier Applier) *IngestWorker {
	return &IngestWorker{log: log, events: events, applier: applier}
}

func (w *IngestWorker) AddSinks(sinks ...contract.EventSink) *IngestWorker {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *IngestWorker) OnActiveChannel(hook func(e event.SyncEvent)) *IngestWorker {
	w.onActive = hook
	return w
}

func (w *IngestWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping ingestion")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.ingest(ctx, evt)
		}
	}
}

func (w *IngestWorker) ingest(ctx context.Context, evt event.SyncEvent) {
	affected := w.applier.Apply(evt)
	for _, sink := range w.sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			w.log.Error("Sink rejected event", "channel", evt.ChannelID(), "error", err)
		}
	}
	if affected && w.onActive != nil {
		w.onActive(evt)
	}
}

// Package sink holds EventSink implementations notified after ingestion.
package sink

import (
	"context"
	"log/slog"

	"rtchat/domain/event"
)

// LogSink traces every ingested sync event. Observability only.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (s LogSink) Consume(_ context.Context, e event.SyncEvent) error {
	switch evt := e.(type) {
	case event.ChannelCreated:
		s.log.Info("Channel created remotely", "channel", evt.Channel.ID, "name", evt.Channel.Name)
	case event.ChannelDeleted:
		s.log.Info("Channel deleted remotely", "channel", evt.ID)
	case event.MembersChanged:
		s.log.Info("Roster updated remotely", "channel", evt.ID, "members", len(evt.Members))
	case event.MessageAppended:
		s.log.Info("Message received", "channel", evt.ID, "author", evt.Message.Author)
	}
	return nil
}

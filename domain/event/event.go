// Package event defines the sync events broadcast between replicas.
// Each variant mirrors one mutation shape of the channel registry; a
// receiving replica applies it as a direct state change with no conflict
// resolution beyond last-writer-wins on rosters.
package event

import "rtchat/domain"

type SyncEvent interface {
	ChannelID() string
}

type ChannelCreated struct {
	Channel *domain.Channel
}

func (e ChannelCreated) ChannelID() string { return e.Channel.ID }

type ChannelDeleted struct {
	ID string
}

func (e ChannelDeleted) ChannelID() string { return e.ID }

type MembersChanged struct {
	ID      string
	Members []domain.UserKey
}

func (e MembersChanged) ChannelID() string { return e.ID }

type MessageAppended struct {
	ID      string
	Message domain.Message
}

func (e MessageAppended) ChannelID() string { return e.ID }

// Package domain contains core concepts of the chat system.
// This file defines Message entries and related rules.
// Messages are immutable and append-only within a channel.
package domain

import "time"

// Message is an immutable chat entry.
type Message struct {
	ID     string    `json:"id"` // unique identifier
	Author UserKey   `json:"author"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}

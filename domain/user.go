// Package domain contains core concepts of the chat system.
// Entities here are pure: no storage, network, or UI logic.
package domain

// UserKey is the stable opaque identifier used to reference a user as
// channel owner, member, or message author. Display names are
// presentation-only and may collide; keys never do.
type UserKey string

// UserIdentity is a directory entry. Immutable once loaded.
type UserIdentity struct {
	ID   UserKey `json:"id"`
	Name string  `json:"name"`
}

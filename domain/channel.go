package domain

import "slices"

// Channel is a named conversation space with an owner, a membership roster
// and an append-only message log.
//
// Invariants maintained by the methods below:
//   - Owner is always present in Members and can never be removed.
//   - Members keeps insertion order and holds no duplicates.
//   - Messages only grow; entries are never rewritten.
type Channel struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Owner    UserKey   `json:"owner"`
	Public   bool      `json:"public"`
	Members  []UserKey `json:"members"`
	Messages []Message `json:"messages"`
}

func NewChannel(id, name string, owner UserKey, public bool) *Channel {
	return &Channel{
		ID:      id,
		Name:    name,
		Owner:   owner,
		Public:  public,
		Members: []UserKey{owner},
	}
}

func (c *Channel) IsMember(user UserKey) bool {
	return slices.Contains(c.Members, user)
}

// AddMember appends user to the roster. Reports false if the user was
// already a member.
func (c *Channel) AddMember(user UserKey) bool {
	if c.IsMember(user) {
		return false
	}
	c.Members = append(c.Members, user)
	return true
}

// RemoveMember drops user from the roster. The owner can never be removed,
// not even by themselves.
func (c *Channel) RemoveMember(user UserKey) bool {
	if user == c.Owner || !c.IsMember(user) {
		return false
	}
	c.Members = slices.DeleteFunc(c.Members, func(m UserKey) bool {
		return m == user
	})
	return true
}

// SetMembers replaces the roster wholesale (last-writer-wins ingestion).
// The owner is re-inserted at the front if the incoming roster lost them.
func (c *Channel) SetMembers(members []UserKey) {
	roster := slices.Clone(members)
	if !slices.Contains(roster, c.Owner) {
		roster = append([]UserKey{c.Owner}, roster...)
	}
	c.Members = roster
}

// Append adds a message to the log.
func (c *Channel) Append(message Message) {
	c.Messages = append(c.Messages, message)
}

// Clone returns a deep copy, safe to hand to another replica.
func (c *Channel) Clone() *Channel {
	clone := *c
	clone.Members = slices.Clone(c.Members)
	clone.Messages = slices.Clone(c.Messages)
	return &clone
}

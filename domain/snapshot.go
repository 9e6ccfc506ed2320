package domain

// Snapshot is the complete serializable state of all channels, keyed by
// channel id. One replica owns exactly one snapshot in memory; the durable
// store persists it wholesale after every mutation.
type Snapshot map[string]*Channel

func NewSnapshot() Snapshot {
	return make(Snapshot)
}

// Clone deep-copies the snapshot so two replicas never share channel memory.
func (s Snapshot) Clone() Snapshot {
	clone := make(Snapshot, len(s))
	for id, channel := range s {
		clone[id] = channel.Clone()
	}
	return clone
}

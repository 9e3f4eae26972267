package store

// SessionRecord is one persisted planning session: the serialized
// conversation context, the media plan snapshot and the state-machine phase.
// Context and MediaPlan are opaque JSON here; the agent layer owns their
// shape.
type SessionRecord struct {
	ID        string
	State     string
	Context   string
	MediaPlan *string
	CreatedTs int64
	UpdatedTs int64
}

type FindSessionRecord struct {
	ID    *string
	State *string
	// UpdatedAfter filters to sessions touched at or after the timestamp.
	UpdatedAfter *int64
	Limit        *int
}

type DeleteSessionRecord struct {
	ID string
}

package domain

import "time"

// PollCursor tracks the poll loop's position across restarts.
// LastFetchEnd and LastSeen are independent: the former records where the
// previous fetch window ended, the latter records the timestamp of the
// most recently published sample and drives dedupe. Zero values mean "no
// prior cycle".
type PollCursor struct {
	LastFetchEnd time.Time
	LastSeen     time.Time
}

// ShouldPublish reports whether a sample at ts is strictly newer than the
// dedupe marker. A zero marker (no prior publish) always publishes.
func (c PollCursor) ShouldPublish(ts time.Time) bool {
	return c.LastSeen.IsZero() || ts.After(c.LastSeen)
}

package domain

import "time"

// PollResult is the recorded outcome of one poll cycle, kept as run
// history for diagnostics.
type PollResult struct {
	// ID is the unique identifier (UUID).
	ID string
	// StartedAt/EndedAt bound the cycle.
	StartedAt time.Time
	EndedAt   time.Time
	// Published is true when a sample was delivered to the broker.
	Published bool
	// SampleTime/SampleValue describe the latest sample seen this cycle,
	// when one existed.
	SampleTime  time.Time
	SampleValue int
	// Error holds the non-fatal failure of the cycle, if any (publish
	// exhaustion). Fatal failures terminate the loop and are not
	// recorded here.
	Error string
}

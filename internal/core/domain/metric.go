package domain

import "time"

// DetailLevel is the sampling granularity requested from the intraday
// heart-rate endpoint.
type DetailLevel string

const (
	// DetailOneSecond requests one sample per second.
	DetailOneSecond DetailLevel = "1sec"
	// DetailOneMinute requests one sample per minute.
	DetailOneMinute DetailLevel = "1min"
	// DetailFiveMinutes requests one sample per five minutes.
	DetailFiveMinutes DetailLevel = "5min"
)

// ParseDetailLevel validates a detail level string.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch DetailLevel(s) {
	case DetailOneSecond, DetailOneMinute, DetailFiveMinutes:
		return DetailLevel(s), nil
	}
	return "", ErrInvalidInput
}

// FetchWindow is the time span of a single intraday fetch.
type FetchWindow struct {
	Start time.Time
	End   time.Time
}

// HeartRateSample is one intraday data point. The provider returns
// samples in chronological order, so the last entry of a series is the
// most recent reading.
type HeartRateSample struct {
	Time  time.Time
	Value int
}

// HeartRateSeries is the intraday dataset for one fetch window.
// Empty means the provider returned no intraday data for the window,
// which is not an error.
type HeartRateSeries struct {
	Samples []HeartRateSample
}

// Latest returns the most recent sample, or false when the series is
// empty.
func (s HeartRateSeries) Latest() (HeartRateSample, bool) {
	if len(s.Samples) == 0 {
		return HeartRateSample{}, false
	}
	return s.Samples[len(s.Samples)-1], true
}

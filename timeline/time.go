package timeline

import "time"

// VTimeInMS defines a position on the virtual timeline in the unit of
// millisecond.
type VTimeInMS int64

// Duration converts a virtual time span into a time.Duration.
func (t VTimeInMS) Duration() time.Duration {
	return time.Duration(t) * time.Millisecond
}

// FromDuration converts a time.Duration into virtual milliseconds,
// truncating sub-millisecond precision.
func FromDuration(d time.Duration) VTimeInMS {
	return VTimeInMS(d / time.Millisecond)
}

// TimeTeller can be used to get the current virtual time.
type TimeTeller interface {
	CurrentTime() VTimeInMS
}

package clock

import "time"

// Clock provides the current time. Dispatchers and remediation actions
// take a Clock instead of calling time.Now so tests can pin the clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns a Clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

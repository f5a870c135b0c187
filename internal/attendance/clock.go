package attendance

import "time"

// Clock supplies the current time. Handlers never read the wall clock
// directly so tests can pin "today".
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

package billing

import "time"

// Clock is injected so cadence-driven due dates are testable; nothing in
// this package reads wall-clock time directly.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

func RealClock() Clock { return realClock{} }

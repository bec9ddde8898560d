package shiftlight

import "time"

// Clock supplies the current time. Animation and debounce timing go
// through a Clock so tests can drive time deterministically.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now()
}

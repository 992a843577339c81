package chat

import (
	"math/rand/v2"
	"time"
)

// Delayer decides how long a bot reply stays hidden behind the typing
// indicator. It only affects when a reply becomes visible, never its content.
type Delayer interface {
	Next() time.Duration
}

// RandomDelay waits Base plus a uniform random duration in [0, Jitter).
type RandomDelay struct {
	Base   time.Duration
	Jitter time.Duration
}

// DefaultDelay mimics a person typing: one to two seconds.
var DefaultDelay = RandomDelay{Base: time.Second, Jitter: time.Second}

// Next implements Delayer.
func (d RandomDelay) Next() time.Duration {
	if d.Jitter <= 0 {
		return max(d.Base, 0)
	}
	return max(d.Base, 0) + rand.N(d.Jitter)
}

// FixedDelay always waits the same duration.
type FixedDelay time.Duration

// Next implements Delayer.
func (d FixedDelay) Next() time.Duration {
	return max(time.Duration(d), 0)
}

// NoDelay makes replies visible immediately.
const NoDelay = FixedDelay(0)

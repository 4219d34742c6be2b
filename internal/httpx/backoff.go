package httpx

import (
	"math/rand"
	"sync"
	"time"
)

// delayRand feeds the jitter applied between retry attempts. Guarded because
// one Client can run requests from several goroutines at once.
var (
	delayMu   sync.Mutex
	delayRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// delay returns the pause before retrying attempt (0-indexed): BaseDelay
// doubled per attempt, capped at MaxDelay, with the policy's jitter applied
// last. Unset delays fall back to modest positive values so a partially
// filled policy still backs off.
func (p RetryPolicy) delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	ceiling := p.MaxDelay
	if ceiling <= 0 {
		ceiling = time.Second
	}

	d := base << uint(attempt)
	if d <= 0 || d > ceiling {
		// Overflow from the shift lands here too.
		d = ceiling
	}
	return jittered(d, p.Jitter)
}

func jittered(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 || d <= 0 {
		return d
	}
	if jitter > 1 {
		jitter = 1
	}

	delayMu.Lock()
	factor := 1 + (delayRand.Float64()*2-1)*jitter
	delayMu.Unlock()
	if factor < 0 {
		factor = 0
	}
	return time.Duration(float64(d) * factor)
}

package client

import (
	"io"
	"sync"
	"time"
)

// rateLimiter is a token bucket shared by every worker of one download run.
// The bucket holds at most one second's worth of bytes, so a stalled
// download cannot bank an unbounded burst.
type rateLimiter struct {
	mu     sync.Mutex
	rate   int64
	tokens float64
	last   time.Time
}

// newRateLimiter returns nil when bytesPerSecond is not positive; a nil
// limiter passes reads through untouched.
func newRateLimiter(bytesPerSecond int64) *rateLimiter {
	if bytesPerSecond <= 0 {
		return nil
	}
	return &rateLimiter{
		rate:   bytesPerSecond,
		tokens: float64(bytesPerSecond),
		last:   time.Now(),
	}
}

// Wrap applies the limit to r.
func (l *rateLimiter) Wrap(r io.Reader) io.Reader {
	if l == nil {
		return r
	}
	return &limitedReader{under: r, lim: l}
}

type limitedReader struct {
	under io.Reader
	lim   *rateLimiter
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	lr.lim.mu.Lock()
	now := time.Now()
	if elapsed := now.Sub(lr.lim.last).Seconds(); elapsed > 0 {
		lr.lim.tokens += elapsed * float64(lr.lim.rate)
		if capacity := float64(lr.lim.rate); lr.lim.tokens > capacity {
			lr.lim.tokens = capacity
		}
		lr.lim.last = now
	}
	allowed := int(lr.lim.tokens)
	if allowed <= 0 {
		lr.lim.mu.Unlock()
		// Wait long enough for a small chunk of budget to accrue, bounded
		// so low limits stay responsive and high limits do not spin.
		wait := time.Duration(float64(time.Second) / float64(lr.lim.rate) * 1024)
		if wait > 50*time.Millisecond {
			wait = 50 * time.Millisecond
		} else if wait < time.Millisecond {
			wait = time.Millisecond
		}
		time.Sleep(wait)
		return lr.Read(p)
	}
	if len(p) > allowed {
		p = p[:allowed]
	}
	lr.lim.mu.Unlock()

	n, err := lr.under.Read(p)
	if n > 0 {
		lr.lim.mu.Lock()
		lr.lim.tokens -= float64(n)
		lr.lim.mu.Unlock()
	}
	return n, err
}

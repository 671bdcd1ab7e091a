package client

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter_DisabledForZeroRate(t *testing.T) {
	assert.Nil(t, newRateLimiter(0))
	assert.Nil(t, newRateLimiter(-100))
}

func TestRateLimiter_NilWrapIsPassthrough(t *testing.T) {
	var lim *rateLimiter
	src := bytes.NewReader([]byte("payload"))

	wrapped := lim.Wrap(src)

	assert.Same(t, src, wrapped)
}

func TestRateLimiter_DeliversAllBytes(t *testing.T) {
	lim := newRateLimiter(1 << 20)
	src := bytes.NewReader(bytes.Repeat([]byte("x"), 4096))

	out, err := io.ReadAll(lim.Wrap(src))

	require.NoError(t, err)
	assert.Len(t, out, 4096)
}

func TestRateLimiter_ThrottlesThroughput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timing-sensitive test in short mode")
	}

	// 2000 bytes at 1000 B/s with a full initial bucket of 1000 tokens
	// needs roughly a second of waiting.
	lim := newRateLimiter(1000)
	src := bytes.NewReader(make([]byte, 2000))

	start := time.Now()
	n, err := io.Copy(io.Discard, lim.Wrap(src))
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, int64(2000), n)
	assert.GreaterOrEqual(t, elapsed, 500*time.Millisecond, "transfer finished too fast to have been throttled")
}

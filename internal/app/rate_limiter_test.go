package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("s1"), "attempt %d inside the burst", i)
	}
	assert.False(t, rl.Allow("s1"), "burst exhausted")

	// Limits are per session.
	assert.True(t, rl.Allow("s2"))

	rl.Forget("s1")
	assert.True(t, rl.Allow("s1"), "window resets after Forget")
}

// Tearing one session down must not reset the window another live
// session is still exhausting.
func TestRateLimiter_ForgetIsPerSession(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Allow("s1"))
	assert.True(t, rl.Allow("s2"))
	assert.False(t, rl.Allow("s2"))

	rl.Forget("s1")
	assert.False(t, rl.Allow("s2"), "s2's window survives s1's teardown")
}

func TestRateLimiter_WindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	assert.True(t, rl.Allow("s1"))
	assert.False(t, rl.Allow("s1"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, rl.Allow("s1"), "old attempts age out of the window")
}

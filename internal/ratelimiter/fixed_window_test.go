package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedWindowLimiter(t *testing.T) {
	rl := NewFixedWindowLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("1.2.3.4")
		assert.True(t, allowed, "request %d", i+1)
	}

	allowed, retryAfter := rl.Allow("1.2.3.4")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))

	// Other clients have their own budget.
	allowed, _ = rl.Allow("5.6.7.8")
	assert.True(t, allowed)
}

func TestFixedWindowReset(t *testing.T) {
	rl := NewFixedWindowLimiter(1, 20*time.Millisecond)

	allowed, _ := rl.Allow("c")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("c")
	assert.False(t, allowed)

	time.Sleep(25 * time.Millisecond)
	allowed, _ = rl.Allow("c")
	assert.True(t, allowed, "window rollover resets the counter")
}

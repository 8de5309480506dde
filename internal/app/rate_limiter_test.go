package app_test

import (
	"testing"
	"time"

	"github.com/dkeye/LivePoll/internal/app"
	"github.com/dkeye/LivePoll/internal/app/apptest"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindow(t *testing.T) {
	clock := apptest.NewClock()
	rl := app.NewRateLimiter(2, time.Second, clock.Now)

	assert.True(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u2"), "limits are per user")

	clock.Advance(time.Second)
	assert.True(t, rl.Allow("u1"))
}

func TestRateLimiterForget(t *testing.T) {
	rl := app.NewRateLimiter(1, time.Minute, apptest.NewClock().Now)
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"))
	rl.Forget("u1")
	assert.True(t, rl.Allow("u1"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := app.NewRateLimiter(0, time.Second, nil)
	for range 50 {
		assert.True(t, rl.Allow("u1"))
	}
}

package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newUserLimiter(1, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("ana"))
	assert.True(t, l.allow("ana"))
	assert.False(t, l.allow("ana"), "burst exhausted")
	assert.True(t, l.allow("ben"), "other users have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.allow("ana"), "one token refills per second")
	assert.False(t, l.allow("ana"))
}

func TestUserLimiter_SweepsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newUserLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.allow("ana")
	l.allow("ben")
	assert.Equal(t, 2, l.size())

	now = now.Add(5 * time.Minute)
	l.allow("ben")
	now = now.Add(6 * time.Minute)
	l.allow("carla")
	assert.Equal(t, 2, l.size(), "ana idled past the limit")
}

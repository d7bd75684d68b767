package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)
	clk := NewMockClock(start)

	assert.Equal(t, start, clk.Now())
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), clk.Today())

	// Crossing midnight moves Today forward by one day.
	clk.Add(15 * time.Hour)
	assert.Equal(t, start.Add(15*time.Hour), clk.Now())
	assert.Equal(t, time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC), clk.Today())

	clk.Set(start)
	assert.Equal(t, start, clk.Now())
}

func TestRealClockToday(t *testing.T) {
	today := NewRealClock().Today()

	assert.Equal(t, 0, today.Hour())
	assert.Equal(t, 0, today.Minute())
	assert.Equal(t, 0, today.Second())
	assert.Equal(t, time.UTC, today.Location())
}

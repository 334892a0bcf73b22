package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func TestInWindowCoversTodayAndTomorrowOnly(t *testing.T) {
	clk := NewFakeClock(time.Date(2026, 3, 10, 23, 59, 0, 0, ist))

	assert.True(t, InWindow(clk, Today(clk)))
	assert.True(t, InWindow(clk, Tomorrow(clk)))
	assert.False(t, InWindow(clk, Today(clk).AddDate(0, 0, 2)))
	assert.False(t, InWindow(clk, Today(clk).AddDate(0, 0, -1)))
}

func TestBeforeCutoffIsExclusive(t *testing.T) {
	clk := NewFakeClock(time.Date(2026, 3, 10, 19, 59, 59, 0, ist))
	assert.True(t, BeforeCutoff(clk, 20))

	clk.Set(time.Date(2026, 3, 10, 20, 0, 0, 0, ist))
	assert.False(t, BeforeCutoff(clk, 20))
}

func TestServiceDateNormalizesWithinDay(t *testing.T) {
	morning := time.Date(2026, 3, 10, 0, 0, 1, 0, ist)
	night := time.Date(2026, 3, 10, 23, 59, 59, 0, ist)
	assert.True(t, ServiceDate(morning).Equal(ServiceDate(night)))
}

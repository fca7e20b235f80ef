package helpers

import (
	"testing"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerValues(t *testing.T) {
	timer := metrics.NewTimer()
	timer.Update(2 * time.Second)

	values := TimerValues(timer)
	assert.EqualValues(t, 1, values["count"])
	assert.Equal(t, "2s", values["max"])
	for _, key := range []string{"min", "mean", "median", "95%", "1m.rate", "mean.rate"} {
		require.Contains(t, values, key)
	}
}

func TestMeterValues(t *testing.T) {
	meter := metrics.NewMeter()
	meter.Mark(3)

	values := MeterValues(meter)
	assert.EqualValues(t, 3, values["count"])
	require.Contains(t, values, "mean.rate")
}

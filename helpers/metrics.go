// Package helpers contains miscellaneous helper functions.
package helpers

import (
	"time"

	"github.com/rcrowley/go-metrics"
)

// TimerValues renders a timer's snapshot as a map, for surfacing in an
// info/status payload. Durations are rendered as strings, rates as raw
// floats.
func TimerValues(timer metrics.Timer) map[string]interface{} {
	ps := timer.Percentiles([]float64{0.5, 0.75, 0.95, 0.99, 0.999})
	return map[string]interface{}{
		"count":     timer.Count(),
		"min":       time.Duration(timer.Min()).String(),
		"max":       time.Duration(timer.Max()).String(),
		"mean":      time.Duration(timer.Mean()).String(),
		"stddev":    timer.StdDev(),
		"median":    time.Duration(ps[0]).String(),
		"75%":       time.Duration(ps[1]).String(),
		"95%":       time.Duration(ps[2]).String(),
		"99%":       time.Duration(ps[3]).String(),
		"99.9%":     time.Duration(ps[4]).String(),
		"1m.rate":   timer.Rate1(),
		"5m.rate":   timer.Rate5(),
		"15m.rate":  timer.Rate15(),
		"mean.rate": timer.RateMean(),
	}
}

// MeterValues renders a meter's snapshot as a map.
func MeterValues(meter metrics.Meter) map[string]interface{} {
	return map[string]interface{}{
		"count":     meter.Count(),
		"1m.rate":   meter.Rate1(),
		"5m.rate":   meter.Rate5(),
		"15m.rate":  meter.Rate15(),
		"mean.rate": meter.RateMean(),
	}
}

// Package fare computes trip cost from elapsed time. It is pure: the same
// start/end timestamps and rates always produce the same cost, so a receipt
// can be audited against the trip's recorded timestamps.
package fare

import (
	"math"
	"time"
)

// Calculator holds the deployment's rate constants.
type Calculator struct {
	BaseFee       float64
	PerMinuteRate float64
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(baseFee, perMinuteRate float64) Calculator {
	return Calculator{BaseFee: baseFee, PerMinuteRate: perMinuteRate}
}

// BillableMinutes returns the elapsed time between start and end rounded up
// to the next whole minute. A non-positive interval bills zero minutes.
func BillableMinutes(start, end time.Time) int {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Minutes()))
}

// Cost returns the fare for the given number of billable minutes.
func (c Calculator) Cost(minutes int) float64 {
	if minutes < 0 {
		minutes = 0
	}
	return c.BaseFee + c.PerMinuteRate*float64(minutes)
}

// CostBetween returns the fare accrued between start and end.
func (c Calculator) CostBetween(start, end time.Time) float64 {
	return c.Cost(BillableMinutes(start, end))
}

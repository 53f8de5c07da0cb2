package fare

import (
	"testing"
	"time"
)

func TestBillableMinutes_RoundsUp(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"zero elapsed", 0, 0},
		{"one second", time.Second, 1},
		{"59 seconds", 59 * time.Second, 1},
		{"exactly one minute", time.Minute, 1},
		{"one minute one second", time.Minute + time.Second, 2},
		{"exactly twenty minutes", 20 * time.Minute, 20},
		{"negative interval", -time.Minute, 0},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := BillableMinutes(start, start.Add(tc.elapsed))
			if got != tc.want {
				t.Errorf("BillableMinutes(%v) = %d, want %d", tc.elapsed, got, tc.want)
			}
		})
	}
}

func TestCost_TwentyMinuteTrip(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(5.0, 1.5)

	// base 5 + 1.5/min over 20 minutes = 35
	if got := calc.Cost(20); got != 35.0 {
		t.Errorf("Cost(20) = %v, want 35", got)
	}
}

func TestCost_ZeroMinutesChargesBaseFee(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(5.0, 1.5)

	if got := calc.Cost(0); got != 5.0 {
		t.Errorf("Cost(0) = %v, want base fee 5", got)
	}

	if got := calc.Cost(-3); got != 5.0 {
		t.Errorf("Cost(-3) = %v, want base fee 5", got)
	}
}

func TestCost_MonotonicNonDecreasing(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(5.0, 1.5)

	prev := calc.Cost(0)
	for minutes := 1; minutes <= 600; minutes++ {
		cost := calc.Cost(minutes)
		if cost < prev {
			t.Fatalf("cost decreased at %d minutes: %v < %v", minutes, cost, prev)
		}
		prev = cost
	}
}

func TestCostBetween_Reproducible(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(5.0, 1.5)
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(17*time.Minute + 42*time.Second)

	first := calc.CostBetween(start, end)
	for i := 0; i < 10; i++ {
		if got := calc.CostBetween(start, end); got != first {
			t.Fatalf("CostBetween not reproducible: %v != %v", got, first)
		}
	}

	// 17m42s bills as 18 minutes.
	want := 5.0 + 1.5*18
	if first != want {
		t.Errorf("CostBetween = %v, want %v", first, want)
	}
}

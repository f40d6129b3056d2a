package processors

import (
	"math"
	"time"
)

const (
	xirrEpsilon       = 1e-6
	xirrMaxIterations = 100
	flatDerivative    = 1e-10
	daysPerYear       = 365.0
)

// Initial guesses are tried strictly in this order; the first one whose
// Newton iteration converges wins. Different orderings can land on
// different legitimate roots when NPV(r) changes sign more than once, so
// the order is part of the observable behavior.
var xirrSeeds = [...]float64{-0.9, -0.5, -0.1, 0.1, 0.5, 0.9}

// XIRR computes the money-weighted annualized rate of return of a dated
// cash-flow series using Newton-Raphson on the ACT/365 net present value,
// anchored at the first flow's date.
//
// It returns 0 whenever the series cannot pin down a rate: fewer than two
// flows, flows all of one sign, fewer than two distinct calendar dates, or
// no seed converging within its iteration budget. The 0 is an
// "undetermined" sentinel, not an actual zero return.
func XIRR(dates []time.Time, values []float64) float64 {
	if !validForXIRR(dates, values) {
		return 0
	}

	days := make([]float64, len(dates))
	for i, d := range dates {
		days[i] = float64(DaysBetween(dates[0], d))
	}

	for _, seed := range xirrSeeds {
		rate := seed
		for iter := 0; iter < xirrMaxIterations; iter++ {
			var npv, deriv float64
			for i, v := range values {
				exp := days[i] / daysPerYear
				npv += v / math.Pow(1+rate, exp)
				deriv -= v * days[i] / (daysPerYear * math.Pow(1+rate, exp+1))
			}
			if math.Abs(deriv) < flatDerivative {
				break // flat slope, this seed is going nowhere
			}
			next := rate - npv/deriv
			if math.Abs(next-rate) < xirrEpsilon {
				return next
			}
			rate = next
		}
	}
	return 0
}

// validForXIRR checks the preconditions for a meaningful rate: at least
// two flows, at least one inflow and one outflow, and at least two
// distinct calendar dates (time of day does not count).
func validForXIRR(dates []time.Time, values []float64) bool {
	if len(dates) < 2 || len(values) < 2 || len(dates) != len(values) {
		return false
	}
	var hasPositive, hasNegative bool
	for _, v := range values {
		if v > 0 {
			hasPositive = true
		} else if v < 0 {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return false
	}
	unique := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		unique[dayKey(d)] = struct{}{}
	}
	return len(unique) > 1
}

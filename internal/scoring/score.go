// Package scoring turns a resume profile and stored job listings into
// confidence and reputation scores, and re-categorizes every job on each
// pass without touching statuses a person has set.
package scoring

import (
	"fmt"
	"math"
)

// Score is a 0–100 value held in hundredths so that rounding happens at
// well-defined points and repeated passes produce identical values.
type Score int64

// Common scores.
const (
	Zero    Score = 0
	Neutral Score = 5000
	Full    Score = 10000
)

// Points builds a Score from whole points.
func Points(p int64) Score { return Score(p * 100) }

// FromFloat converts a stored float, rounding half away from zero.
func FromFloat(f float64) Score {
	return Score(math.Round(f * 100))
}

// Float64 returns the value in points with two-decimal precision.
func (s Score) Float64() float64 {
	return float64(s) / 100
}

// Valid reports whether s is within 0–100.
func (s Score) Valid() bool {
	return s >= Zero && s <= Full
}

// Clamp limits s to 0–100.
func (s Score) Clamp() Score {
	switch {
	case s < Zero:
		return Zero
	case s > Full:
		return Full
	}
	return s
}

func (s Score) String() string {
	return fmt.Sprintf("%d.%02d", int64(s)/100, int64(s)%100)
}

// ratio returns num/den*100 in hundredths, rounded half up. den must be
// positive and num non-negative.
func ratio(num, den int) Score {
	return Score(divRound(int64(num)*10000, int64(den)))
}

// divRound divides non-negative n by positive d rounding half up.
func divRound(n, d int64) int64 {
	return (2*n + d) / (2 * d)
}

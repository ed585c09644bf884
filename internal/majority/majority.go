// Package majority finds the element occurring in more than half of the positions of an
// integer sequence using the Boyer–Moore majority vote.
//
// The vote makes two passes over the input. The first pass cancels pairs of differing
// elements and leaves a single candidate; the second pass counts the candidate's
// occurrences and confirms it only if the count exceeds floor(n/2). Time is O(n) and
// auxiliary space O(1).
package majority

import "majority-vote/internal/metrics"

// Algorithm is the name under which results of this package are reported
const Algorithm = "BoyerMooreMajorityVote"

// FindMajority returns the majority element of seq and true, or 0 and false when no element
// occurs more than len(seq)/2 times (including the empty and nil cases).
//
// When rec is non-nil it is reset and then filled with the counters of this run, bracketed by
// its timer. A nil rec runs the same code path without instrumentation; the result is the same
// either way. seq is only read.
func FindMajority(seq []int, rec *metrics.Recorder) (int, bool) {
	if rec == nil {
		return vote(seq, metrics.Noop{})
	}
	return vote(seq, rec)
}

// vote is instantiated once per collector type, so the Noop calls compile away
func vote[C metrics.Collector](seq []int, c C) (int, bool) {
	c.Reset()
	c.StartTimer()
	defer c.StopTimer()

	if len(seq) == 0 {
		return 0, false
	}

	// Phase 1: candidate search
	var candidate int
	count := 0
	c.IncrementAssignments()

	for _, num := range seq {
		c.IncrementIterations()

		c.IncrementComparisons()
		if count == 0 {
			candidate = num
			c.IncrementAssignments()
		}

		c.IncrementComparisons()
		if num == candidate {
			count++
		} else {
			count--
		}
		c.IncrementAssignments()
	}

	// Phase 2: verification
	count = 0
	c.IncrementAssignments()

	for _, num := range seq {
		c.IncrementIterations()
		c.IncrementComparisons()
		if num == candidate {
			count++
			c.IncrementAssignments()
		}
	}

	c.IncrementComparisons()
	found := count > len(seq)/2
	c.IncrementAssignments()

	if !found {
		return 0, false
	}
	return candidate, true
}

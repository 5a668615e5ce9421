// Package clock provides countdown math for timed interview questions.
//
// Remaining time is always derived from an absolute start timestamp rather
// than a decrementing counter, so missed ticks or a process reload never
// cause drift: recomputation from (now - start) is correct regardless of
// how many ticks were skipped.
package clock

import "time"

// StartQuestionTimer computes the absolute start timestamp for a question
// countdown. When previousRemaining is a valid value in (0, timeLimit], the
// start time is back-dated by the seconds already consumed, so a resumed
// question continues from where it left off. Any other previousRemaining
// (zero, negative, or larger than the limit) starts a fresh countdown.
func StartQuestionTimer(now time.Time, timeLimit, previousRemaining int) time.Time {
	if previousRemaining > 0 && previousRemaining <= timeLimit {
		consumed := timeLimit - previousRemaining
		return now.Add(-time.Duration(consumed) * time.Second)
	}
	return now
}

// Tick reports the remaining whole seconds for a question countdown and
// whether it has expired. It is a pure function of its inputs: calling it
// any number of times at the same instant yields the same result, so the
// caller may poll at arbitrary frequency without double-counting.
func Tick(now, questionStart time.Time, timeLimit int) (remaining int, expired bool) {
	elapsed := int(now.Sub(questionStart) / time.Second)
	remaining = timeLimit - elapsed
	if remaining < 0 {
		remaining = 0
	}
	return remaining, remaining <= 0
}

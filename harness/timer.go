package harness

import "time"

// Timed runs op exactly once and returns its wall-clock duration.
// op's error is returned unchanged; classifying it is the caller's
// concern.
func Timed(op func() error) (time.Duration, error) {
	start := time.Now()
	err := op()

	return time.Since(start), err
}

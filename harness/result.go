// Package harness runs timed write/read cycles for every input and
// format pair and records the measurements.
package harness

// Result holds the measurements for one (input, format) pair.
// It is created once all cycles for the pair have finished (or the
// pair has failed) and is immutable thereafter.
type Result struct {
	Input           string    `json:"input"`
	Format          string    `json:"format"`
	WriteTimes      []float64 `json:"write_times_s"`
	ReadTimes       []float64 `json:"read_times_s"`
	SizeBytes       uint64    `json:"size_bytes"`
	CyclesRequested int       `json:"cycles_requested"`
	CyclesCompleted int       `json:"cycles_completed"`
	Failure         string    `json:"failure,omitempty"`
}

// Complete reports whether every requested cycle finished.
func (r *Result) Complete() bool {
	return r.Failure == "" && r.CyclesCompleted == r.CyclesRequested
}

// AvgWriteSeconds returns the mean write duration in seconds.
func (r *Result) AvgWriteSeconds() float64 { return mean(r.WriteTimes) }

// AvgReadSeconds returns the mean read duration in seconds.
func (r *Result) AvgReadSeconds() float64 { return mean(r.ReadTimes) }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	var sum float64
	for _, x := range xs {
		sum += x
	}

	return sum / float64(len(xs))
}

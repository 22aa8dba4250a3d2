// Package report formats benchmark results into comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/weiihann/serbench/harness"
)

// Generate writes a markdown comparison table for the given results,
// one row per (input, format) in run order. Pairs that finished fewer
// cycles than requested are marked and their failure reasons listed.
func Generate(w io.Writer, results []harness.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	fastest := fastestWrites(results)

	fmt.Fprintln(w, "## Serialization Benchmark Results")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Input | Format | Avg Write | Avg Read | Size "+
		"| Cycles | Rel Write |")
	fmt.Fprintln(w, "|-------|--------|-----------|----------|------"+
		"|--------|-----------|")

	for _, r := range results {
		rel := "-"

		if base := fastest[r.Input]; base > 0 && r.AvgWriteSeconds() > 0 {
			rel = fmt.Sprintf("%.2fx", r.AvgWriteSeconds()/base)
		}

		cycles := fmt.Sprintf("%d/%d", r.CyclesCompleted, r.CyclesRequested)
		if !r.Complete() {
			cycles += " !"
		}

		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
			r.Input,
			r.Format,
			formatSeconds(r.AvgWriteSeconds()),
			formatSeconds(r.AvgReadSeconds()),
			sizeMB(r.SizeBytes),
			cycles,
			rel,
		)
	}

	fmt.Fprintln(w)

	writeFailures(w, results)
	writeDetail(w, results)

	return nil
}

// GenerateJSON writes results as JSON to w.
func GenerateJSON(w io.Writer, results []harness.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

func writeFailures(w io.Writer, results []harness.Result) {
	found := false

	for _, r := range results {
		if r.Complete() {
			continue
		}

		if !found {
			fmt.Fprintln(w, "### Incomplete pairs")
			fmt.Fprintln(w)

			found = true
		}

		fmt.Fprintf(w, "- %s/%s after %d of %d cycles: %s\n",
			r.Input, r.Format,
			r.CyclesCompleted, r.CyclesRequested,
			r.Failure,
		)
	}

	if found {
		fmt.Fprintln(w)
	}
}

func writeDetail(w io.Writer, results []harness.Result) {
	fmt.Fprintln(w, "### Per-cycle times")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Input | Format | Write Times | Read Times |")
	fmt.Fprintln(w, "|-------|--------|-------------|------------|")

	for _, r := range results {
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			r.Input,
			r.Format,
			joinTimes(r.WriteTimes),
			joinTimes(r.ReadTimes),
		)
	}
}

// fastestWrites returns the lowest average write time per input, the
// baseline for the relative write column.
func fastestWrites(results []harness.Result) map[string]float64 {
	fastest := make(map[string]float64)

	for _, r := range results {
		avg := r.AvgWriteSeconds()
		if avg <= 0 {
			continue
		}

		cur, ok := fastest[r.Input]
		if !ok || avg < cur {
			fastest[r.Input] = avg
		}
	}

	return fastest
}

func joinTimes(xs []float64) string {
	if len(xs) == 0 {
		return "-"
	}

	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = formatSeconds(x)
	}

	return strings.Join(parts, ", ")
}

func formatSeconds(s float64) string {
	switch {
	case s <= 0:
		return "-"
	case s < 0.001:
		return fmt.Sprintf("%.0fµs", math.Round(s*1e6))
	case s < 1:
		return fmt.Sprintf("%.2fms", s*1e3)
	default:
		return fmt.Sprintf("%.2fs", s)
	}
}

func sizeMB(b uint64) string {
	if b == 0 {
		return "-"
	}

	return fmt.Sprintf("%.2f MB", float64(b)/(1<<20))
}

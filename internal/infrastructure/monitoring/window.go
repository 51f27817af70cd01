package monitoring

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// latencyWindowSize is how many recent render durations are summarized.
const latencyWindowSize = 1024

// LatencySummary describes recent render durations in milliseconds
type LatencySummary struct {
	Samples int     `json:"samples"`
	Mean    float64 `json:"mean_ms"`
	StdDev  float64 `json:"stddev_ms"`
	P50     float64 `json:"p50_ms"`
	P95     float64 `json:"p95_ms"`
	P99     float64 `json:"p99_ms"`
	Max     float64 `json:"max_ms"`
}

// window is a fixed size ring of samples
type window struct {
	mu      sync.Mutex
	samples []float64
	next    int
	full    bool
}

func newWindow(size int) *window {
	return &window{samples: make([]float64, size)}
}

func (w *window) add(v float64) {
	w.mu.Lock()
	w.samples[w.next] = v
	w.next++
	if w.next == len(w.samples) {
		w.next = 0
		w.full = true
	}
	w.mu.Unlock()
}

// values returns a sorted copy of the samples held.
func (w *window) values() []float64 {
	w.mu.Lock()
	n := w.next
	if w.full {
		n = len(w.samples)
	}
	out := make([]float64, n)
	copy(out, w.samples[:n])
	w.mu.Unlock()

	sort.Float64s(out)
	return out
}

func (w *window) summary() LatencySummary {
	xs := w.values()
	if len(xs) == 0 {
		return LatencySummary{}
	}

	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) == 1 {
		std = 0
	}
	return LatencySummary{
		Samples: len(xs),
		Mean:    mean,
		StdDev:  std,
		P50:     stat.Quantile(0.50, stat.Empirical, xs, nil),
		P95:     stat.Quantile(0.95, stat.Empirical, xs, nil),
		P99:     stat.Quantile(0.99, stat.Empirical, xs, nil),
		Max:     xs[len(xs)-1],
	}
}

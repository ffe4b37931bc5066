package callbacks

import (
	"math"
	"sort"
)

// History records every epoch's metrics in memory, one aligned series per
// metric name. Series stay aligned with the epoch list: a metric missing
// from an epoch is recorded as NaN, and a metric first seen mid-training is
// back-filled with NaN for the epochs before it appeared.
type History struct {
	epochs []int
	order  []string
	series map[string][]float64
}

// NewHistory creates an empty history recorder.
func NewHistory() *History {
	return &History{series: make(map[string][]float64)}
}

// OnTrainBegin clears any previously recorded history.
func (h *History) OnTrainBegin() error {
	h.epochs = nil
	h.order = nil
	h.series = make(map[string][]float64)
	return nil
}

// OnTrainEnd implements Callback.
func (h *History) OnTrainEnd() error { return nil }

// OnEpochEnd appends the epoch's metrics to the recorded series.
func (h *History) OnEpochEnd(epoch int, metrics map[string]float64) error {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, known := h.series[name]; !known {
			h.order = append(h.order, name)
			h.series[name] = backfill(len(h.epochs))
		}
	}

	h.epochs = append(h.epochs, epoch)
	for _, name := range h.order {
		value, ok := metrics[name]
		if !ok {
			value = math.NaN()
		}
		h.series[name] = append(h.series[name], value)
	}
	return nil
}

func backfill(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// Len returns the number of recorded epochs.
func (h *History) Len() int {
	return len(h.epochs)
}

// Epochs returns the recorded zero-based epoch indices in order.
func (h *History) Epochs() []int {
	return h.epochs
}

// Names returns the metric names in first-seen order.
func (h *History) Names() []string {
	return h.order
}

// Metric returns the recorded series for a metric name, aligned with
// Epochs. The second result is false when the metric was never recorded.
func (h *History) Metric(name string) ([]float64, bool) {
	s, ok := h.series[name]
	return s, ok
}

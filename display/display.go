// Package display renders evaluation results for humans: an aligned metric
// table on a writer, and training-curve plots submitted to the sidecar
// plotting service.
package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Evaluator is the slice of a model needed to print its evaluation
// metrics. Evaluate runs the model over its evaluation data and returns
// one value per name reported by MetricNames, in the same order.
type Evaluator interface {
	MetricNames() []string
	Evaluate() ([]float64, error)
}

// Metrics evaluates the model and prints each metric on its own line, with
// values aligned three columns past the longest metric name.
func Metrics(w io.Writer, model Evaluator) error {
	values, err := model.Evaluate()
	if err != nil {
		return fmt.Errorf("failed to evaluate model: %w", err)
	}

	names := model.MetricNames()
	if len(names) != len(values) {
		return fmt.Errorf("metric name/value count mismatch: %d names, %d values", len(names), len(values))
	}

	maxLen := 0
	for _, name := range names {
		if len(name) > maxLen {
			maxLen = len(name)
		}
	}

	for i, name := range names {
		padding := strings.Repeat(" ", 3+maxLen-len(name))
		value := strconv.FormatFloat(values[i], 'g', -1, 64)
		if _, err := fmt.Fprintf(w, "%s%s%s\n", name, padding, value); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}

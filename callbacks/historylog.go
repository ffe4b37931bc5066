package callbacks

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// HistoryLog appends one training-log row per epoch to a delimited text
// file. The header row is written exactly once, on the first event: "epoch"
// followed by the metric names. Each data row is the 1-based epoch number
// followed by the metric values in header order.
//
// The column set is frozen at the first event. Metric maps are unordered,
// so the columns are sorted by name; a metric missing from a later epoch is
// written as NaN, and metrics first appearing after the header are ignored.
type HistoryLog struct {
	path          string
	delimiter     string
	columns       []string
	headerWritten bool
}

// NewHistoryLog creates the log callback writing to path. An empty
// delimiter defaults to ",".
func NewHistoryLog(path, delimiter string) *HistoryLog {
	if delimiter == "" {
		delimiter = ","
	}
	return &HistoryLog{path: path, delimiter: delimiter}
}

// OnTrainBegin implements Callback.
func (h *HistoryLog) OnTrainBegin() error { return nil }

// OnTrainEnd implements Callback.
func (h *HistoryLog) OnTrainEnd() error { return nil }

// OnEpochEnd writes one row, creating the file and writing the header
// first if this is the first event.
func (h *HistoryLog) OnEpochEnd(epoch int, metrics map[string]float64) error {
	var lines []string

	if !h.headerWritten {
		h.columns = make([]string, 0, len(metrics))
		for name := range metrics {
			h.columns = append(h.columns, name)
		}
		sort.Strings(h.columns)
		lines = append(lines, strings.Join(append([]string{"epoch"}, h.columns...), h.delimiter))
	}

	row := make([]string, 0, len(h.columns)+1)
	row = append(row, strconv.Itoa(epoch+1))
	for _, name := range h.columns {
		value, ok := metrics[name]
		if !ok {
			row = append(row, "NaN")
			continue
		}
		row = append(row, strconv.FormatFloat(value, 'g', -1, 64))
	}
	lines = append(lines, strings.Join(row, h.delimiter))

	flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if !h.headerWritten {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	file, err := os.OpenFile(h.path, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history log %s: %w", h.path, err)
	}
	defer file.Close()

	if _, err := file.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		return fmt.Errorf("failed to write history log %s: %w", h.path, err)
	}
	h.headerWritten = true
	return nil
}

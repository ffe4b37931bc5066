package callbacks

import "time"

// EpochTimeKey is the metric name under which TimeHistory records the
// wall-clock duration of each epoch, in seconds.
const EpochTimeKey = "epoch_time"

// TimeHistory injects per-epoch wall-clock time into the training log.
// Register it before callbacks that record metrics (History, HistoryLog) so
// they see the epoch_time entry.
type TimeHistory struct {
	now   func() time.Time
	start time.Time
}

// NewTimeHistory creates the timing callback.
func NewTimeHistory() *TimeHistory {
	return &TimeHistory{now: time.Now}
}

// OnTrainBegin starts the stopwatch.
func (t *TimeHistory) OnTrainBegin() error {
	t.start = t.now()
	return nil
}

// OnEpochEnd writes the elapsed seconds since the previous epoch boundary
// into the metric map and restarts the stopwatch.
func (t *TimeHistory) OnEpochEnd(epoch int, metrics map[string]float64) error {
	end := t.now()
	if t.start.IsZero() {
		t.start = end
	}
	metrics[EpochTimeKey] = end.Sub(t.start).Seconds()
	t.start = end
	return nil
}

// OnTrainEnd implements Callback.
func (t *TimeHistory) OnTrainEnd() error { return nil }

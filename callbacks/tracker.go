package callbacks

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// MetricDirection defines which way a monitored metric improves.
type MetricDirection int

const (
	// Minimize means smaller values are better (losses, error rates).
	Minimize MetricDirection = iota
	// Maximize means larger values are better (accuracies, f-measures).
	Maximize
)

func (d MetricDirection) String() string {
	switch d {
	case Minimize:
		return "Minimize"
	case Maximize:
		return "Maximize"
	default:
		return fmt.Sprintf("Unknown(%d)", int(d))
	}
}

// initialBest returns the starting best value for the direction, chosen so
// that any finite observation counts as an improvement.
func (d MetricDirection) initialBest() float64 {
	if d == Maximize {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// better reports whether v improves on best under the direction.
func (d MetricDirection) better(v, best float64) bool {
	if d == Maximize {
		return v > best
	}
	return v < best
}

// Mode selects how the monitored metric's direction is resolved.
type Mode string

const (
	// ModeAuto infers the direction from the monitor name: names containing
	// "acc" or starting with "fmeasure" maximize, everything else minimizes.
	ModeAuto Mode = "auto"
	// ModeMin watches for new minima.
	ModeMin Mode = "min"
	// ModeMax watches for new maxima.
	ModeMax Mode = "max"
)

// DecisionKind classifies the outcome of a Record call.
type DecisionKind int

const (
	// DecisionSkip means not enough epochs have elapsed since the last
	// eligible epoch; no state changed.
	DecisionSkip DecisionKind = iota
	// DecisionImproved means the monitored metric beat the best value so far.
	DecisionImproved
	// DecisionNotImproved means the monitored metric did not beat the best
	// value so far.
	DecisionNotImproved
	// DecisionMissingMetric means the monitored metric was absent from the
	// epoch's metric map.
	DecisionMissingMetric
)

func (dk DecisionKind) String() string {
	switch dk {
	case DecisionSkip:
		return "Skip"
	case DecisionImproved:
		return "Improved"
	case DecisionNotImproved:
		return "NotImproved"
	case DecisionMissingMetric:
		return "MissingMetric"
	default:
		return fmt.Sprintf("Unknown(%d)", int(dk))
	}
}

// Decision is the classification returned by BestMetricTracker.Record.
// PreviousBest and Best are only meaningful for Improved (best before and
// after the update) and NotImproved (both equal the standing best).
type Decision struct {
	Kind         DecisionKind
	PreviousBest float64
	Best         float64
}

// BestMetricTracker decides, once per epoch, whether a monitored metric is
// the best value seen so far and whether enough epochs have elapsed for a
// save to be eligible. It owns all of its state; callers interact with it
// only through Record.
type BestMetricTracker struct {
	monitor              string
	direction            MetricDirection
	best                 float64
	period               int
	epochsSinceLastEvent int
}

// NewBestMetricTracker creates a tracker for the named metric. An unknown
// mode is recovered by falling back to ModeAuto with a warning; a period
// below 1 is clamped to 1. The logger may be nil.
func NewBestMetricTracker(monitor string, mode Mode, period int, logger *zap.SugaredLogger) *BestMetricTracker {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	switch mode {
	case ModeAuto, ModeMin, ModeMax:
	default:
		logger.Warnf("BestMetricTracker mode %q is unknown, fallback to auto mode", string(mode))
		mode = ModeAuto
	}

	if period < 1 {
		period = 1
	}

	var direction MetricDirection
	switch mode {
	case ModeMin:
		direction = Minimize
	case ModeMax:
		direction = Maximize
	default:
		direction = inferDirection(monitor)
	}

	return &BestMetricTracker{
		monitor:   monitor,
		direction: direction,
		best:      direction.initialBest(),
		period:    period,
	}
}

// inferDirection applies the auto-mode naming heuristic. It is a substring
// match, so a name like "bad_acc_rate" classifies as Maximize; the
// heuristic is kept as-is for compatibility with existing monitor names.
func inferDirection(monitor string) MetricDirection {
	if strings.Contains(monitor, "acc") || strings.HasPrefix(monitor, "fmeasure") {
		return Maximize
	}
	return Minimize
}

// Record consumes one epoch-end event and classifies it. Epochs below the
// configured period return Skip without touching any other state. At an
// eligible epoch the period counter resets and the monitored metric is
// compared against the best value so far; an improvement updates the best.
// Record never fails for numeric input.
func (t *BestMetricTracker) Record(epoch int, metrics map[string]float64) Decision {
	_ = epoch // part of the callback contract; the decision is epoch-independent

	t.epochsSinceLastEvent++
	if t.epochsSinceLastEvent < t.period {
		return Decision{Kind: DecisionSkip}
	}
	t.epochsSinceLastEvent = 0

	current, ok := metrics[t.monitor]
	if !ok {
		return Decision{Kind: DecisionMissingMetric}
	}

	if t.direction.better(current, t.best) {
		previous := t.best
		t.best = current
		return Decision{Kind: DecisionImproved, PreviousBest: previous, Best: current}
	}
	return Decision{Kind: DecisionNotImproved, PreviousBest: t.best, Best: t.best}
}

// Monitor returns the name of the watched metric.
func (t *BestMetricTracker) Monitor() string {
	return t.monitor
}

// Direction returns the resolved metric direction.
func (t *BestMetricTracker) Direction() MetricDirection {
	return t.direction
}

// Best returns the best value seen so far, or the direction's infinity if
// no value has been accepted yet.
func (t *BestMetricTracker) Best() float64 {
	return t.best
}

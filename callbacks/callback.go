// Package callbacks provides epoch-boundary hooks for a training loop:
// secondary-model checkpointing, epoch timing, history recording, and
// delimited training-log output.
//
// Callbacks are invoked explicitly by whatever loop drives training. The
// loop calls OnTrainBegin once, OnEpochEnd after every epoch with the
// zero-based epoch index and the epoch's metric map, and OnTrainEnd once
// training is finished. Calls are strictly sequential on a single
// goroutine.
package callbacks

import "fmt"

// Callback receives training lifecycle events.
type Callback interface {
	OnTrainBegin() error
	OnEpochEnd(epoch int, metrics map[string]float64) error
	OnTrainEnd() error
}

// CallbackList dispatches lifecycle events to a set of callbacks in
// registration order. Order matters: a callback that enriches the metric
// map (such as TimeHistory) must be registered before the callbacks that
// record it.
type CallbackList struct {
	callbacks []Callback
}

// NewCallbackList creates a callback list with the given callbacks.
func NewCallbackList(callbacks ...Callback) *CallbackList {
	return &CallbackList{callbacks: callbacks}
}

// Append adds a callback to the end of the list.
func (cl *CallbackList) Append(cb Callback) {
	cl.callbacks = append(cl.callbacks, cb)
}

// OnTrainBegin notifies all callbacks that training is starting.
func (cl *CallbackList) OnTrainBegin() error {
	for _, cb := range cl.callbacks {
		if err := cb.OnTrainBegin(); err != nil {
			return fmt.Errorf("callback train begin: %w", err)
		}
	}
	return nil
}

// OnEpochEnd notifies all callbacks that an epoch has ended. The metric
// map is shared between callbacks, so earlier callbacks may add entries
// that later callbacks observe.
func (cl *CallbackList) OnEpochEnd(epoch int, metrics map[string]float64) error {
	if metrics == nil {
		metrics = map[string]float64{}
	}
	for _, cb := range cl.callbacks {
		if err := cb.OnEpochEnd(epoch, metrics); err != nil {
			return fmt.Errorf("callback epoch %d: %w", epoch, err)
		}
	}
	return nil
}

// OnTrainEnd notifies all callbacks that training has finished.
func (cl *CallbackList) OnTrainEnd() error {
	for _, cb := range cl.callbacks {
		if err := cb.OnTrainEnd(); err != nil {
			return fmt.Errorf("callback train end: %w", err)
		}
	}
	return nil
}

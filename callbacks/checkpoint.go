package callbacks

import (
	"fmt"

	"go.uber.org/zap"
)

// ModelSaver persists a secondary model's state to a path. The
// serialization format is the saver's concern; the checkpoint callback only
// decides when to save and where.
type ModelSaver interface {
	// Save persists the full model (architecture, configuration, weights).
	Save(path string) error
	// SaveWeights persists only the model's weights.
	SaveWeights(path string) error
}

// CheckpointConfig configures a SecondaryModelCheckpoint.
type CheckpointConfig struct {
	// Filepath is the checkpoint path template, resolved through FormatPath
	// with the 1-based epoch number and the epoch's metrics. For example
	// "weights.{epoch:02d}-{val_loss:.2f}.json".
	Filepath string
	// Monitor is the metric watched when SaveBestOnly is set. Defaults to
	// "val_loss".
	Monitor string
	// Verbose emits an info-level message for every save decision.
	Verbose bool
	// SaveBestOnly saves only when the monitored metric improves on the
	// best value seen so far.
	SaveBestOnly bool
	// SaveWeightsOnly selects ModelSaver.SaveWeights over ModelSaver.Save.
	SaveWeightsOnly bool
	// Mode resolves the monitored metric's direction. Defaults to ModeAuto.
	Mode Mode
	// Period is the number of epochs between save-eligibility checks.
	// Defaults to 1.
	Period int
}

// DefaultCheckpointConfig returns a configuration that saves the full model
// every epoch, keeping only improvements of val_loss.
func DefaultCheckpointConfig(filepath string) CheckpointConfig {
	return CheckpointConfig{
		Filepath:     filepath,
		Monitor:      "val_loss",
		SaveBestOnly: true,
		Mode:         ModeAuto,
		Period:       1,
	}
}

// SecondaryModelCheckpoint saves a secondary model at epoch boundaries. The
// model being checkpointed is typically not the one the training loop
// optimizes directly (a shared sub-model, an inference twin), which is why
// it is handed in as an explicit collaborator.
type SecondaryModelCheckpoint struct {
	model   ModelSaver
	config  CheckpointConfig
	tracker *BestMetricTracker
	logger  *zap.SugaredLogger
}

// NewSecondaryModelCheckpoint creates the checkpoint callback. Zero config
// fields fall back to defaults (Monitor "val_loss", ModeAuto, Period 1).
// The logger may be nil; warnings and verbose messages are then dropped.
func NewSecondaryModelCheckpoint(model ModelSaver, config CheckpointConfig, logger *zap.SugaredLogger) *SecondaryModelCheckpoint {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if config.Monitor == "" {
		config.Monitor = "val_loss"
	}
	if config.Mode == "" {
		config.Mode = ModeAuto
	}
	if config.Period < 1 {
		config.Period = 1
	}

	return &SecondaryModelCheckpoint{
		model:   model,
		config:  config,
		tracker: NewBestMetricTracker(config.Monitor, config.Mode, config.Period, logger),
		logger:  logger,
	}
}

// OnTrainBegin implements Callback.
func (c *SecondaryModelCheckpoint) OnTrainBegin() error { return nil }

// OnTrainEnd implements Callback.
func (c *SecondaryModelCheckpoint) OnTrainEnd() error { return nil }

// OnEpochEnd consults the tracker and saves the model when the epoch is
// save-eligible. With SaveBestOnly, a missing monitored metric skips the
// save with a warning, and only improvements are persisted. Save and path
// resolution errors propagate to the caller.
func (c *SecondaryModelCheckpoint) OnEpochEnd(epoch int, metrics map[string]float64) error {
	decision := c.tracker.Record(epoch, metrics)
	if decision.Kind == DecisionSkip {
		return nil
	}

	path, err := FormatPath(c.config.Filepath, epoch, metrics)
	if err != nil {
		return err
	}

	if !c.config.SaveBestOnly {
		if c.config.Verbose {
			c.logger.Infof("Epoch %05d: saving model to %s", epoch+1, path)
		}
		return c.save(path)
	}

	switch decision.Kind {
	case DecisionMissingMetric:
		c.logger.Warnf("can save best model only with %s available, skipping", c.config.Monitor)
		return nil
	case DecisionImproved:
		if c.config.Verbose {
			c.logger.Infof("Epoch %05d: %s improved from %0.5f to %0.5f, saving model to %s",
				epoch+1, c.config.Monitor, decision.PreviousBest, decision.Best, path)
		}
		return c.save(path)
	default:
		if c.config.Verbose {
			c.logger.Infof("Epoch %05d: %s did not improve from %0.5f",
				epoch+1, c.config.Monitor, decision.Best)
		}
		return nil
	}
}

func (c *SecondaryModelCheckpoint) save(path string) error {
	if c.config.SaveWeightsOnly {
		if err := c.model.SaveWeights(path); err != nil {
			return fmt.Errorf("failed to save model weights to %s: %w", path, err)
		}
		return nil
	}
	if err := c.model.Save(path); err != nil {
		return fmt.Errorf("failed to save model to %s: %w", path, err)
	}
	return nil
}

// Best exposes the tracker's best value so far, mainly for reporting at the
// end of training.
func (c *SecondaryModelCheckpoint) Best() float64 {
	return c.tracker.Best()
}

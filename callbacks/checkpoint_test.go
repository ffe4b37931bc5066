package callbacks

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeModel records save requests in order
type fakeModel struct {
	saves       []string
	weightSaves []string
	failWith    error
}

func (m *fakeModel) Save(path string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.saves = append(m.saves, path)
	return nil
}

func (m *fakeModel) SaveWeights(path string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.weightSaves = append(m.weightSaves, path)
	return nil
}

func runEpochs(t *testing.T, cb *SecondaryModelCheckpoint, monitor string, values []float64) {
	t.Helper()
	for epoch, value := range values {
		if err := cb.OnEpochEnd(epoch, map[string]float64{monitor: value}); err != nil {
			t.Fatalf("epoch %d: unexpected error: %v", epoch, err)
		}
	}
}

// TestCheckpointSaveBestOnly tests that only improvements are saved
func TestCheckpointSaveBestOnly(t *testing.T) {
	model := &fakeModel{}
	cb := NewSecondaryModelCheckpoint(model, CheckpointConfig{
		Filepath:     "ckpt.{epoch:02d}.json",
		Monitor:      "val_loss",
		SaveBestOnly: true,
	}, nil)

	runEpochs(t, cb, "val_loss", []float64{0.9, 0.5, 0.7, 0.5})

	expected := []string{"ckpt.01.json", "ckpt.02.json"}
	if len(model.saves) != len(expected) {
		t.Fatalf("saves = %v, expected %v", model.saves, expected)
	}
	for i, path := range expected {
		if model.saves[i] != path {
			t.Errorf("save %d = %q, expected %q", i, model.saves[i], path)
		}
	}
	if len(model.weightSaves) != 0 {
		t.Errorf("unexpected weight-only saves: %v", model.weightSaves)
	}
	if cb.Best() != 0.5 {
		t.Errorf("best = %v, expected 0.5", cb.Best())
	}
}

// TestCheckpointSaveWeightsOnly tests the weights-only switch
func TestCheckpointSaveWeightsOnly(t *testing.T) {
	model := &fakeModel{}
	cb := NewSecondaryModelCheckpoint(model, CheckpointConfig{
		Filepath:        "weights.json",
		SaveBestOnly:    true,
		SaveWeightsOnly: true,
	}, nil)

	runEpochs(t, cb, "val_loss", []float64{0.9, 0.5})

	if len(model.saves) != 0 {
		t.Errorf("unexpected full saves: %v", model.saves)
	}
	if len(model.weightSaves) != 2 {
		t.Errorf("weight saves = %v, expected 2 saves", model.weightSaves)
	}
}

// TestCheckpointPeriod tests that saves happen only at period boundaries
func TestCheckpointPeriod(t *testing.T) {
	model := &fakeModel{}
	cb := NewSecondaryModelCheckpoint(model, CheckpointConfig{
		Filepath: "ckpt.{epoch}.json",
		Period:   2,
	}, nil)

	runEpochs(t, cb, "val_loss", []float64{0.9, 0.8, 0.7, 0.6})

	expected := []string{"ckpt.2.json", "ckpt.4.json"}
	if len(model.saves) != len(expected) {
		t.Fatalf("saves = %v, expected %v", model.saves, expected)
	}
	for i, path := range expected {
		if model.saves[i] != path {
			t.Errorf("save %d = %q, expected %q", i, model.saves[i], path)
		}
	}
}

// TestCheckpointSavesEveryEligibleEpoch tests the unconditional branch
func TestCheckpointSavesEveryEligibleEpoch(t *testing.T) {
	model := &fakeModel{}
	cb := NewSecondaryModelCheckpoint(model, CheckpointConfig{
		Filepath: "ckpt.{epoch}.json",
	}, nil)

	// Values never improve after the first epoch; saves happen regardless.
	runEpochs(t, cb, "val_loss", []float64{0.5, 0.9, 0.9})

	if len(model.saves) != 3 {
		t.Errorf("saves = %v, expected one save per epoch", model.saves)
	}
}

// TestCheckpointMissingMonitorWarns tests the recoverable missing-metric path
func TestCheckpointMissingMonitorWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core).Sugar()

	model := &fakeModel{}
	cb := NewSecondaryModelCheckpoint(model, CheckpointConfig{
		Filepath:     "ckpt.json",
		Monitor:      "val_loss",
		SaveBestOnly: true,
	}, logger)

	if err := cb.OnEpochEnd(0, map[string]float64{"loss": 0.3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(model.saves)+len(model.weightSaves) != 0 {
		t.Error("expected no save when the monitored metric is missing")
	}
	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if msg := logs.All()[0].Message; !strings.Contains(msg, "val_loss") {
		t.Errorf("warning %q does not name the monitored metric", msg)
	}
}

// TestCheckpointFormatErrorPropagates tests that a bad template surfaces
func TestCheckpointFormatErrorPropagates(t *testing.T) {
	model := &fakeModel{}
	cb := NewSecondaryModelCheckpoint(model, CheckpointConfig{
		Filepath: "ckpt.{val_acc:.2f}.json",
	}, nil)

	err := cb.OnEpochEnd(0, map[string]float64{"val_loss": 0.3})
	if err == nil {
		t.Fatal("expected error for unresolvable path template")
	}
	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Errorf("expected *FormatError, got %T: %v", err, err)
	}
	if len(model.saves) != 0 {
		t.Errorf("unexpected saves after template failure: %v", model.saves)
	}
}

// TestCheckpointSaveErrorPropagates tests collaborator failure surfacing
func TestCheckpointSaveErrorPropagates(t *testing.T) {
	saveErr := errors.New("disk full")
	model := &fakeModel{failWith: saveErr}
	cb := NewSecondaryModelCheckpoint(model, CheckpointConfig{
		Filepath:     "ckpt.json",
		SaveBestOnly: true,
	}, nil)

	err := cb.OnEpochEnd(0, map[string]float64{"val_loss": 0.3})
	if err == nil {
		t.Fatal("expected save error to propagate")
	}
	if !errors.Is(err, saveErr) {
		t.Errorf("error %v does not wrap the save error", err)
	}
}

// TestCheckpointDefaults tests zero-config fallbacks
func TestCheckpointDefaults(t *testing.T) {
	config := DefaultCheckpointConfig("ckpt.json")
	if config.Monitor != "val_loss" {
		t.Errorf("default monitor = %q, expected val_loss", config.Monitor)
	}
	if config.Mode != ModeAuto {
		t.Errorf("default mode = %q, expected auto", config.Mode)
	}
	if config.Period != 1 {
		t.Errorf("default period = %d, expected 1", config.Period)
	}

	// A zero-valued config resolves to the same defaults.
	cb := NewSecondaryModelCheckpoint(&fakeModel{}, CheckpointConfig{Filepath: "ckpt.json"}, nil)
	if cb.tracker.Monitor() != "val_loss" {
		t.Errorf("tracker monitor = %q, expected val_loss", cb.tracker.Monitor())
	}
	if cb.tracker.Direction() != Minimize {
		t.Errorf("tracker direction = %s, expected Minimize", cb.tracker.Direction())
	}
}

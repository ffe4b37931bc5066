// Package checkpoints persists framework-neutral model snapshots as JSON.
// It is the default persistence collaborator for the checkpoint callback:
// Saver.Bind adapts a model-state provider to the callbacks.ModelSaver
// contract.
package checkpoints

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tsawler/metricks/callbacks"
)

// WeightTensor is one model parameter tensor with its data.
type WeightTensor struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// ModelState is a snapshot of a model: its configuration plus its weights.
// The configuration is opaque to this package; it travels with full saves
// and is dropped by weights-only saves.
type ModelState struct {
	Name    string         `json:"name"`
	Config  map[string]any `json:"config,omitempty"`
	Weights []WeightTensor `json:"weights"`
}

// Metadata describes a saved snapshot. RunID ties together every snapshot
// written by one Saver instance over a training run.
type Metadata struct {
	RunID       string    `json:"run_id"`
	Version     string    `json:"version"`
	Framework   string    `json:"framework"`
	CreatedAt   time.Time `json:"created_at"`
	WeightsOnly bool      `json:"weights_only"`
	Description string    `json:"description,omitempty"`
}

// Snapshot is the on-disk envelope: metadata plus the model state.
type Snapshot struct {
	Metadata Metadata   `json:"metadata"`
	State    ModelState `json:"state"`
}

const (
	snapshotVersion   = "1.0.0"
	snapshotFramework = "metricks"
)

// Saver writes model snapshots in JSON format.
type Saver struct {
	runID string
	now   func() time.Time
}

// NewSaver creates a saver with a fresh run ID.
func NewSaver() *Saver {
	return &Saver{
		runID: uuid.NewString(),
		now:   time.Now,
	}
}

// RunID returns the identifier stamped into every snapshot this saver
// writes.
func (s *Saver) RunID() string {
	return s.runID
}

// Save persists the full model state to path.
func (s *Saver) Save(state *ModelState, path string) error {
	return s.write(state, path, false)
}

// SaveWeights persists only the model's weights to path; the model
// configuration is dropped from the snapshot.
func (s *Saver) SaveWeights(state *ModelState, path string) error {
	stripped := *state
	stripped.Config = nil
	return s.write(&stripped, path, true)
}

func (s *Saver) write(state *ModelState, path string, weightsOnly bool) error {
	snapshot := Snapshot{
		Metadata: Metadata{
			RunID:       s.runID,
			Version:     snapshotVersion,
			Framework:   snapshotFramework,
			CreatedAt:   s.now(),
			WeightsOnly: weightsOnly,
		},
		State: *state,
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&snapshot); err != nil {
		return fmt.Errorf("failed to encode snapshot: %v", err)
	}
	return nil
}

// Load reads a snapshot back from path.
func Load(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %v", err)
	}
	defer file.Close()

	var snapshot Snapshot
	if err := json.NewDecoder(file).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %v", err)
	}
	return &snapshot, nil
}

// BoundModel couples a Saver with a state provider so the checkpoint
// callback can ask for a save without knowing how model state is produced.
type BoundModel struct {
	saver    *Saver
	provider func() *ModelState
}

var _ callbacks.ModelSaver = (*BoundModel)(nil)

// Bind adapts a model-state provider to the callbacks.ModelSaver contract.
// The provider is invoked once per save, at save time, so it should return
// the model's current state.
func (s *Saver) Bind(provider func() *ModelState) *BoundModel {
	return &BoundModel{saver: s, provider: provider}
}

// Save implements callbacks.ModelSaver.
func (bm *BoundModel) Save(path string) error {
	return bm.saver.Save(bm.provider(), path)
}

// SaveWeights implements callbacks.ModelSaver.
func (bm *BoundModel) SaveWeights(path string) error {
	return bm.saver.SaveWeights(bm.provider(), path)
}

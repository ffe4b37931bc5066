package callbacks

import (
	"errors"
	"testing"
)

// TestFormatPath tests placeholder substitution and format specs
func TestFormatPath(t *testing.T) {
	tests := []struct {
		name     string
		template string
		epoch    int
		metrics  map[string]float64
		expected string
	}{
		{"NoPlaceholders", "model.json", 0, nil, "model.json"},
		{"EpochOneBased", "run-{epoch}.json", 0, nil, "run-1.json"},
		{"EpochPadded", "weights.{epoch:02d}.h5", 4, map[string]float64{}, "weights.05.h5"},
		{"MetricPrecision", "weights.{epoch:02d}-{val_loss:.2f}.hdf5", 0, map[string]float64{"val_loss": 0.12345}, "weights.01-0.12.hdf5"},
		{"MetricNoSpec", "best-{val_loss}.json", 2, map[string]float64{"val_loss": 0.5}, "best-0.5.json"},
		{"MetricScientific", "lr-{lr:.1e}.json", 0, map[string]float64{"lr": 0.001}, "lr-1.0e-03.json"},
		{"LiteralBraces", "{{epoch}}-{epoch}.json", 0, nil, "{epoch}-1.json"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := FormatPath(test.template, test.epoch, test.metrics)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != test.expected {
				t.Errorf("FormatPath(%q) = %q, expected %q", test.template, got, test.expected)
			}
		})
	}
}

// TestFormatPathUnknownField tests the FormatError path
func TestFormatPathUnknownField(t *testing.T) {
	_, err := FormatPath("weights.{val_acc:.2f}.h5", 0, map[string]float64{"val_loss": 0.5})
	if err == nil {
		t.Fatal("expected error for unknown field")
	}

	var formatErr *FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected *FormatError, got %T: %v", err, err)
	}
	if formatErr.Field != "val_acc" {
		t.Errorf("FormatError.Field = %q, expected %q", formatErr.Field, "val_acc")
	}
}

// TestFormatPathMalformed tests malformed templates
func TestFormatPathMalformed(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{"Unterminated", "weights.{epoch"},
		{"UnmatchedClose", "weights.epoch}.h5"},
		{"BadSpec", "weights.{epoch:zz}.h5"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := FormatPath(test.template, 0, nil); err == nil {
				t.Errorf("FormatPath(%q) succeeded, expected error", test.template)
			}
		})
	}
}

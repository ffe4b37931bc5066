package display

import (
	"fmt"
	"time"

	"github.com/tsawler/metricks/callbacks"
)

// PlotType identifies the kind of plot a payload describes.
type PlotType string

// TrainingCurves plots per-epoch metric series over the course of training.
const TrainingCurves PlotType = "training_curves"

// DataPoint is a single x/y point in a data series.
type DataPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SeriesData is one named line in a plot.
type SeriesData struct {
	Name string      `json:"name"`
	Type string      `json:"type"`
	Data []DataPoint `json:"data"`
}

// PlotConfig carries axis labels and figure options for the plotting
// service.
type PlotConfig struct {
	XAxisLabel string `json:"x_axis_label"`
	YAxisLabel string `json:"y_axis_label"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ShowLegend bool   `json:"show_legend"`
	ShowGrid   bool   `json:"show_grid"`
	Style      string `json:"style,omitempty"`
}

// PlotData is the JSON payload understood by the sidecar plotting service.
type PlotData struct {
	PlotType  PlotType     `json:"plot_type"`
	Title     string       `json:"title"`
	Timestamp time.Time    `json:"timestamp"`
	Series    []SeriesData `json:"series"`
	Config    PlotConfig   `json:"config"`
}

const defaultFigureSize = 12

// HistoryPlot builds a training-vs-validation curve plot for one metric
// from a recorded history. The training series comes from the metric name
// itself and the validation series from "val_"+metric; the validation
// series is optional, the training series is not. Width and height values
// below 1 fall back to the default figure size.
func HistoryPlot(history *callbacks.History, metric string, width, height int) (*PlotData, error) {
	training, ok := history.Metric(metric)
	if !ok {
		return nil, fmt.Errorf("history has no metric %q", metric)
	}
	if width < 1 {
		width = defaultFigureSize
	}
	if height < 1 {
		height = defaultFigureSize
	}

	series := []SeriesData{
		{Name: "training " + metric, Type: "line", Data: seriesPoints(training)},
	}
	if validation, ok := history.Metric("val_" + metric); ok {
		series = append(series, SeriesData{
			Name: "validation " + metric,
			Type: "line",
			Data: seriesPoints(validation),
		})
	}

	return &PlotData{
		PlotType:  TrainingCurves,
		Title:     metric,
		Timestamp: time.Now(),
		Series:    series,
		Config: PlotConfig{
			XAxisLabel: "epoch",
			YAxisLabel: metric,
			Width:      width,
			Height:     height,
			ShowLegend: true,
			ShowGrid:   true,
			Style:      "ggplot",
		},
	}, nil
}

func seriesPoints(values []float64) []DataPoint {
	points := make([]DataPoint, len(values))
	for i, v := range values {
		points[i] = DataPoint{X: float64(i), Y: v}
	}
	return points
}

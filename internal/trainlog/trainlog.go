// Package trainlog records the loss curve of a training run and writes it as CSV.
package trainlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Recorder collects one loss value per training step.
type Recorder struct {
	// Window is the length of the trailing moving average. Zero means 100.
	Window int

	losses []float64
}

// NewRecorder creates a Recorder with the given moving average window.
func NewRecorder(window int) *Recorder {
	return &Recorder{Window: window}
}

func (r *Recorder) window() int {
	if r.Window <= 0 {
		return 100
	}
	return r.Window
}

// Record appends the loss of one step.
func (r *Recorder) Record(loss float64) {
	r.losses = append(r.losses, loss)
}

// Len returns the number of recorded steps.
func (r *Recorder) Len() int {
	return len(r.losses)
}

// Losses returns a copy of the recorded losses.
func (r *Recorder) Losses() []float64 {
	return append([]float64(nil), r.losses...)
}

// MovingAverage returns, for every step, the mean of the losses in the
// trailing window ending at that step. Early steps average what is available.
func (r *Recorder) MovingAverage() []float64 {
	w := r.window()
	avg := make([]float64, len(r.losses))
	for i := range r.losses {
		start := i + 1 - w
		if start < 0 {
			start = 0
		}
		avg[i] = stat.Mean(r.losses[start:i+1], nil)
	}
	return avg
}

// WriteCSV writes the header "step,loss,moving_avg" and one record per step.
func (r *Recorder) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"step", "loss", "moving_avg"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, avg := range r.MovingAverage() {
		record := []string{
			strconv.Itoa(i),
			fmt.Sprintf("%.6f", r.losses[i]),
			fmt.Sprintf("%.6f", avg),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes the loss curve to a file, truncating it.
func (r *Recorder) SaveCSV(filename string) error {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	if err := r.WriteCSV(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

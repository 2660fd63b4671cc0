package trainlog

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMovingAverage tests the trailing window mean.
func TestMovingAverage(t *testing.T) {
	r := NewRecorder(2)
	for _, l := range []float64{4, 2, 6, 0} {
		r.Record(l)
	}

	assert.Equal(t, 4, r.Len())
	assert.InDeltaSlice(t, []float64{4, 3, 4, 3}, r.MovingAverage(), 1e-12)
}

// TestDefaultWindow tests the zero-value window.
func TestDefaultWindow(t *testing.T) {
	var r Recorder
	for i := 0; i < 150; i++ {
		r.Record(float64(i))
	}
	avg := r.MovingAverage()
	// Mean of 50..149.
	assert.InDelta(t, 99.5, avg[149], 1e-12)
}

// TestLossesIsCopy tests that the recorded losses cannot be changed from outside.
func TestLossesIsCopy(t *testing.T) {
	r := NewRecorder(3)
	r.Record(1)
	r.Losses()[0] = 5
	assert.Equal(t, []float64{1}, r.Losses())
}

// TestWriteCSV tests the CSV layout.
func TestWriteCSV(t *testing.T) {
	r := NewRecorder(2)
	r.Record(1)
	r.Record(0.5)

	var buf bytes.Buffer
	require.NoError(t, r.WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"step", "loss", "moving_avg"},
		{"0", "1.000000", "1.000000"},
		{"1", "0.500000", "0.750000"},
	}, records)
}

// TestSaveCSV tests that SaveCSV truncates an existing file.
func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "losses.csv")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 4096), 0644))

	r := NewRecorder(1)
	r.Record(0.25)
	require.NoError(t, r.SaveCSV(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "step,loss,moving_avg\n0,0.250000,0.250000\n", string(data))
}

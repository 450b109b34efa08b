// Package export writes simulation trajectories to CSV and JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/milosgajdos/go-invpend/matrix"
	"github.com/milosgajdos/go-invpend/sim"
	"gonum.org/v1/gonum/mat"
)

// Data is JSON representation of a trajectory.
// State, Input and Output hold one row per vector element.
type Data struct {
	Steps  int         `json:"steps"`
	Time   []float64   `json:"time"`
	State  [][]float64 `json:"state"`
	Input  [][]float64 `json:"input"`
	Output [][]float64 `json:"output"`
}

// NewData returns JSON representation of traj
func NewData(traj *sim.Trajectory) (*Data, error) {
	if err := check(traj); err != nil {
		return nil, err
	}

	return &Data{
		Steps:  traj.Len(),
		Time:   traj.Time,
		State:  matrix.Rows(traj.State),
		Input:  matrix.Rows(traj.Input),
		Output: matrix.Rows(traj.Output),
	}, nil
}

// Header returns CSV header for traj: time column followed by
// state (x), input (u) and output (y) columns.
func Header(traj *sim.Trajectory) []string {
	nx, _ := traj.State.Dims()
	nu, _ := traj.Input.Dims()
	ny, _ := traj.Output.Dims()

	header := []string{"t"}
	for i := 0; i < nx; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	for i := 0; i < nu; i++ {
		header = append(header, fmt.Sprintf("u%d", i))
	}
	for i := 0; i < ny; i++ {
		header = append(header, fmt.Sprintf("y%d", i))
	}

	return header
}

// WriteCSV writes traj to w as CSV with one row per sample.
func WriteCSV(w io.Writer, traj *sim.Trajectory) error {
	if err := check(traj); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := Header(traj)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for k := 0; k < traj.Len(); k++ {
		row = row[:0]
		row = append(row, format(traj.Time[k]))
		for _, v := range []mat.Vector{traj.StateAt(k), traj.InputAt(k), traj.OutputAt(k)} {
			for i := 0; i < v.Len(); i++ {
				row = append(row, format(v.AtVec(i)))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes traj to w as indented JSON.
func WriteJSON(w io.Writer, traj *sim.Trajectory) error {
	data, err := NewData(traj)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// SaveCSV writes traj to CSV file at path
func SaveCSV(path string, traj *sim.Trajectory) error {
	return save(path, traj, WriteCSV)
}

// SaveJSON writes traj to JSON file at path
func SaveJSON(path string, traj *sim.Trajectory) error {
	return save(path, traj, WriteJSON)
}

func save(path string, traj *sim.Trajectory, write func(io.Writer, *sim.Trajectory) error) error {
	if err := check(traj); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f, traj); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return f.Close()
}

func check(traj *sim.Trajectory) error {
	if traj == nil || traj.State == nil || traj.Input == nil || traj.Output == nil {
		return fmt.Errorf("invalid trajectory")
	}

	return nil
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

package matrix

import (
	"fmt"

	mx "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// RowSums returns a slice containing m row sums.
// It panics if m is nil.
func RowSums(m *mat.Dense) []float64 {
	rows, _ := m.Dims()
	sum := make([]float64, rows)

	for i := 0; i < rows; i++ {
		sum[i] = floats.Sum(m.RawRowView(i))
	}

	return sum
}

// ColSums returns a slice containing m column sums.
// It panics if m is nil.
func ColSums(m *mat.Dense) []float64 {
	_, cols := m.Dims()
	sum := make([]float64, cols)

	for i := 0; i < cols; i++ {
		sum[i] = mat.Sum(m.ColView(i))
	}

	return sum
}

// Rows returns a copy of m data organized as a slice of rows.
// It panics if m is nil.
func Rows(m *mat.Dense) [][]float64 {
	rows, _ := m.Dims()
	out := make([][]float64, rows)

	for i := 0; i < rows; i++ {
		out[i] = mat.Row(nil, i, m)
	}

	return out
}

// Cols returns a copy of m data organized as a slice of columns.
// It panics if m is nil.
func Cols(m *mat.Dense) [][]float64 {
	_, cols := m.Dims()
	out := make([][]float64, cols)

	for j := 0; j < cols; j++ {
		out[j] = mat.Col(nil, j, m)
	}

	return out
}

// Format returns m formatted for printing.
func Format(m mat.Matrix) fmt.Formatter {
	return mx.Format(m)
}

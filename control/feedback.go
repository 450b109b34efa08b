// Package control implements feedback control laws for linear systems.
package control

import (
	"fmt"
	"math"

	invpend "github.com/milosgajdos/go-invpend"
	"gonum.org/v1/gonum/mat"
)

// StateFeedback is a full state feedback controller with reference tracking.
// It computes a scalar control input as:
//
//	u = Nbar*r - K*x
//
// where K is [1 x nx] feedback gain and Nbar is feedforward scale
// which makes the output track the reference r in steady state.
type StateFeedback struct {
	// k is feedback gain
	k *mat.Dense
	// nbar is feedforward scale
	nbar float64
}

// NewStateFeedback creates new StateFeedback controller with feedback gain K and
// feedforward scale nbar and returns it. K is copied.
// It returns error if K is not a row vector or if either K or nbar are not finite.
func NewStateFeedback(K *mat.Dense, nbar float64) (*StateFeedback, error) {
	if K == nil || K.IsEmpty() {
		return nil, fmt.Errorf("feedback gain must be defined: %w", invpend.ErrDimensionMismatch)
	}

	rows, cols := K.Dims()
	if rows != 1 {
		return nil, fmt.Errorf("invalid feedback gain dimensions [%d x %d]: %w", rows, cols, invpend.ErrDimensionMismatch)
	}

	for j := 0; j < cols; j++ {
		if !finite(K.At(0, j)) {
			return nil, fmt.Errorf("invalid feedback gain value at %d: %v: %w", j, K.At(0, j), invpend.ErrDimensionMismatch)
		}
	}

	if !finite(nbar) {
		return nil, fmt.Errorf("invalid feedforward scale %v: %w", nbar, invpend.ErrDimensionMismatch)
	}

	return &StateFeedback{
		k:    mat.DenseCopyOf(K),
		nbar: nbar,
	}, nil
}

// Control returns control input for the state x and reference r.
// It returns error if x has a different length than the feedback gain.
func (s *StateFeedback) Control(x mat.Vector, r float64) (mat.Vector, error) {
	nx, _ := s.Dims()
	if x == nil || x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector: %w", invpend.ErrDimensionMismatch)
	}

	kx := mat.Dot(s.k.RowView(0), x)

	return mat.NewVecDense(1, []float64{s.nbar*r - kx}), nil
}

// Dims returns the length of the state vector and the length of the control vector.
func (s *StateFeedback) Dims() (nx, nu int) {
	_, nx = s.k.Dims()
	return nx, 1
}

// Gain returns feedback gain K
func (s *StateFeedback) Gain() mat.Matrix {
	k := &mat.Dense{}
	k.CloneFrom(s.k)

	return k
}

// Nbar returns feedforward scale
func (s *StateFeedback) Nbar() float64 {
	return s.nbar
}

// String implements the Stringer interface.
func (s *StateFeedback) String() string {
	return fmt.Sprintf("StateFeedback{\nK=%v\nNbar=%v\n}", mat.Formatted(s.k, mat.Prefix("  "), mat.Squeeze()), s.nbar)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

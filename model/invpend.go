// Package model provides the linearized inverted pendulum on a cart plant
// discretized at 100 Hz together with its tracking state feedback controller.
package model

import (
	"fmt"

	"github.com/milosgajdos/go-invpend/control"
	"github.com/milosgajdos/go-invpend/sim"
	"gonum.org/v1/gonum/mat"
)

const (
	// Nbar is feedforward scale of the reference controller
	Nbar = -61.55
	// Ref is desired cart position in meters
	Ref = 0.2
	// Ts is sampling period in seconds
	Ts = 0.01
	// Horizon is simulated duration in seconds
	Horizon = 5.0
	// Title is reference step response plot title
	Title = "Inverted Pendulum Step Response"
)

var (
	// StateLabels are the names of state vector elements
	StateLabels = []string{"Cart Pos (m)", "Cart Vel (m/s)", "Pend Pos (rad)", "Pend Vel (rad/s)"}
	// OutputLabels are the names of output vector elements
	OutputLabels = []string{"Cart Pos (m)", "Pend Pos (rad)"}
)

// A returns state matrix of the plant
func A() *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1.0000, 0.0100, 0.0001, 0.0,
		0.0, 0.9982, 0.0267, 0.0001,
		0.0, 0.0, 1.0016, 0.0100,
		0.0, -0.0045, 0.3119, 1.0016,
	})
}

// B returns input matrix of the plant
func B() *mat.Dense {
	return mat.NewDense(4, 1, []float64{0.0001, 0.0182, 0.0002, 0.0454})
}

// C returns output matrix of the plant: cart position and pendulum angle are measured
func C() *mat.Dense {
	return mat.NewDense(2, 4, []float64{
		1, 0, 0, 0,
		0, 0, 1, 0,
	})
}

// D returns feedthrough matrix of the plant
func D() *mat.Dense {
	return mat.NewDense(2, 1, []float64{0, 0})
}

// K returns state feedback gain of the reference controller
func K() *mat.Dense {
	return mat.NewDense(1, 4, []float64{-61.9933, -33.5040, 95.0597, 18.8300})
}

// NewPlant returns discrete-time model of the plant
func NewPlant() (*sim.Discrete, error) {
	return sim.NewDiscrete(A(), B(), C(), D(), nil)
}

// NewController returns the reference state feedback controller
func NewController() (*control.StateFeedback, error) {
	return control.NewStateFeedback(K(), Nbar)
}

// Simulate runs the reference step response: the plant starts at rest and
// the cart is commanded to Ref for Horizon seconds sampled every Ts.
func Simulate() (*sim.Trajectory, error) {
	return sim.Simulate(A(), B(), C(), K(), Nbar, Ref, Ts, Horizon)
}

// State is the plant state
type State struct {
	// CartPos is cart position in m
	CartPos float64
	// CartVel is cart velocity in m/s
	CartVel float64
	// PendPos is pendulum angle in rad
	PendPos float64
	// PendVel is pendulum angular velocity in rad/s
	PendVel float64
}

// StateFromVec returns State stored in vector v.
// It returns error if v is not a 4 element vector.
func StateFromVec(v mat.Vector) (State, error) {
	if v == nil || v.Len() != 4 {
		return State{}, fmt.Errorf("invalid state vector: %w", sim.ErrDimensionMismatch)
	}

	return State{
		CartPos: v.AtVec(0),
		CartVel: v.AtVec(1),
		PendPos: v.AtVec(2),
		PendVel: v.AtVec(3),
	}, nil
}

// Vec returns s as a state vector
func (s State) Vec() *mat.VecDense {
	return mat.NewVecDense(4, []float64{s.CartPos, s.CartVel, s.PendPos, s.PendVel})
}

// Output is the measured plant output
type Output struct {
	// CartPos is cart position in m
	CartPos float64
	// PendPos is pendulum angle in rad
	PendPos float64
}

// OutputFromVec returns Output stored in vector v.
// It returns error if v is not a 2 element vector.
func OutputFromVec(v mat.Vector) (Output, error) {
	if v == nil || v.Len() != 2 {
		return Output{}, fmt.Errorf("invalid output vector: %w", sim.ErrDimensionMismatch)
	}

	return Output{
		CartPos: v.AtVec(0),
		PendPos: v.AtVec(1),
	}, nil
}

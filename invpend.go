package invpend

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Propagator propagates internal state of the system to the next step
type Propagator interface {
	// Propagate propagates internal state x of the system to the next step
	// given an input vector u and a process noise vector wd.
	Propagate(x, u, wd mat.Vector) (mat.Vector, error)
}

// Observer observes external state (output) of the system
type Observer interface {
	// Observe observes external state of the system given internal state x,
	// input u and output noise wn.
	Observe(x, u, wn mat.Vector) (mat.Vector, error)
}

// DiscreteControlSystem is a linear, discrete-time dynamical system
// whose state is driven by static propagation and observation matrices.
type DiscreteControlSystem interface {
	Propagator
	Observer
	// SystemDims returns internal state length (nx), input vector length (nu),
	// output vector length (ny) and disturbance vector length (nz).
	SystemDims() (nx, nu, ny, nz int)
	// SystemMatrix returns state propagation matrix A
	SystemMatrix() mat.Matrix
	// ControlMatrix returns state propagation control matrix B
	ControlMatrix() mat.Matrix
	// OutputMatrix returns observation matrix C
	OutputMatrix() mat.Matrix
	// FeedForwardMatrix returns observation control matrix D
	FeedForwardMatrix() mat.Matrix
}

// Controller computes control input of the system
type Controller interface {
	// Control returns the control input for state x and reference r
	Control(x mat.Vector, r float64) (mat.Vector, error)
	// Dims returns the state and control vector lengths the controller expects
	Dims() (nx, nu int)
}

// Noise is dynamical system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset() error
}

// ErrDimensionMismatch is returned when matrices, vectors or time parameters
// supplied to a system, controller or simulation are not mutually conformant.
var ErrDimensionMismatch = errors.New("dimension mismatch")

package sim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Discrete is a basic model of a linear, discrete-time, dynamical system
type Discrete struct {
	System
}

// NewDiscrete creates a linear discrete-time model based on the control theory equations.
//
//	x[n+1] = A*x[n] + B*u[n] + E*z[n] (disturbances E not implemented yet)
//	y[n] = C*x[n] + D*u[n]
//
// The supplied matrices are copied. It returns error if the matrices are not conformant.
func NewDiscrete(A, B, C, D, E *mat.Dense) (*Discrete, error) {
	if A == nil {
		return nil, fmt.Errorf("system matrix must be defined for a model: %w", ErrDimensionMismatch)
	}

	sys := newSystem(A, B, C, D, E)
	if err := sys.Validate(); err != nil {
		return nil, err
	}

	return &Discrete{System: sys}, nil
}

// Propagate returns the next internal state x of a linear, discrete-time
// system given an input vector u and a disturbance input wd (process noise).
func (ds *Discrete) Propagate(x, u, wd mat.Vector) (mat.Vector, error) {
	nx, nu, _, _ := ds.SystemDims()
	if u != nil && u.Len() != nu {
		return nil, fmt.Errorf("invalid input vector: %w", ErrDimensionMismatch)
	}

	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector: %w", ErrDimensionMismatch)
	}

	out := new(mat.Dense)
	out.Mul(ds.A, x)
	if u != nil && ds.B != nil {
		outU := new(mat.Dense)
		outU.Mul(ds.B, u)

		out.Add(out, outU)
	}

	if wd != nil && wd.Len() == nx {
		out.Add(out, wd)
	}
	return out.ColView(0), nil
}

package sim

import (
	"fmt"

	"github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"
)

// Continuous is a basic model of a linear, continuous-time, dynamical system
type Continuous struct {
	System
}

// NewContinuous creates a linear continuous-time model based on the control theory equations
// which is advanced by timestep dt.
//
//	dx/dt = A*x + B*u + E*z (disturbances E not implemented yet)
//	y = C*x + D*u
func NewContinuous(A, B, C, D, E *mat.Dense) (*Continuous, error) {
	if A == nil {
		return nil, fmt.Errorf("system matrix must be defined for a model: %w", ErrDimensionMismatch)
	}

	sys := newSystem(A, B, C, D, E)
	if err := sys.Validate(); err != nil {
		return nil, err
	}

	return &Continuous{System: sys}, nil
}

// ToDiscrete creates a discrete-time model from a continuous time model
// using Ts as the sampling time. Both A and B are discretized assuming
// zero-order hold on the input.
func (ct *Continuous) ToDiscrete(Ts float64) (*Discrete, error) {
	if Ts <= 0 {
		return nil, fmt.Errorf("invalid sampling time %v: %w", Ts, ErrDimensionMismatch)
	}

	nx, _, _, _ := ct.SystemDims()
	dsys := newSystem(ct.A, ct.B, ct.C, ct.D, ct.E)
	// Ad = exp(A*Ts)
	dsys.A.Scale(Ts, dsys.A)
	dsys.A.Exp(dsys.A)

	if ct.B == nil {
		return &Discrete{dsys}, nil
	}

	Bd := dsys.B
	Aaux := mat.NewDense(nx, nx, nil)
	eye, err := matrix.NewDenseValIdentity(nx, 1.0)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity matrix: %v", err)
	}

	// A is not singular: Bd = (exp(A*Ts) - I)*inv(A)*B
	Aaux.Sub(dsys.A, eye)
	Ainv := mat.NewDense(nx, nx, nil)
	if err := Ainv.Inverse(ct.A); err == nil {
		Aaux.Mul(Aaux, Ainv)
		Bd.Mul(Aaux, ct.B)
		return &Discrete{dsys}, nil
	}

	// A is singular: Bd = integrate(exp(A*t)dt, 0, Ts) * B
	// approximated with the trapezoidal rule
	Asum := mat.NewDense(nx, nx, nil)
	const n = 100
	dt := Ts / float64(n-1)
	for i := 0; i < n; i++ {
		Aaux.Scale(dt*float64(i), ct.A)
		Aaux.Exp(Aaux)
		w := dt
		if i == 0 || i == n-1 {
			w = dt / 2
		}
		Aaux.Scale(w, Aaux)
		Asum.Add(Asum, Aaux)
	}
	Bd.Mul(Asum, ct.B)

	return &Discrete{dsys}, nil
}

// Propagate returns the next internal state x of a linear, continuous-time
// system given an input vector u and a disturbance input wd (process noise).
// It integrates the state derivative over timestep dt using Euler's method.
func (ct *Continuous) Propagate(x, u, wd mat.Vector, dt float64) (mat.Vector, error) {
	nx, nu, _, _ := ct.SystemDims()
	if u != nil && u.Len() != nu {
		return nil, fmt.Errorf("invalid input vector: %w", ErrDimensionMismatch)
	}

	if x.Len() != nx {
		return nil, fmt.Errorf("invalid state vector: %w", ErrDimensionMismatch)
	}

	out := new(mat.Dense)
	out.Mul(ct.A, x)
	if u != nil && ct.B != nil {
		outU := new(mat.Dense)
		outU.Mul(ct.B, u)

		out.Add(out, outU)
	}

	if wd != nil && wd.Len() == nx {
		out.Add(out, wd)
	}
	// integrate the first order derivatives calculated: dx/dt = A*x + B*u + wd
	out.Scale(dt, out)
	out.Add(x, out)
	return out.ColView(0), nil
}

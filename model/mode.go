package model

import (
	"fmt"
	"math"

	"github.com/milosgajdos/go-invpend/sim"
)

// Mode is the operating mode of the cart
type Mode int

const (
	// Locked means the cart is not driven.
	// It is set by an external lock command and is never returned by Classify.
	Locked Mode = iota
	// Moving means the cart is travelling towards the reference
	Moving
	// Holding means the cart holds the reference with the pendulum upright
	Holding
	// Failed means the pendulum left the linear region of the model
	Failed
)

// String implements the Stringer interface.
func (m Mode) String() string {
	switch m {
	case Locked:
		return "LOCKED"
	case Moving:
		return "MOVING"
	case Holding:
		return "HOLDING"
	case Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Limits bound the states used to classify the plant mode
type Limits struct {
	// PosTol is cart position tolerance around the reference in m
	PosTol float64
	// VelTol is cart velocity tolerance in m/s
	VelTol float64
	// PendTol is pendulum angle tolerance in rad
	PendTol float64
	// PendMax is the largest pendulum angle the linear model is valid for in rad
	PendMax float64
}

// DefaultLimits returns limits used for the reference plant
func DefaultLimits() Limits {
	return Limits{
		PosTol:  0.005,
		VelTol:  0.01,
		PendTol: 0.01,
		PendMax: 0.5,
	}
}

// Classify returns the mode of the plant in state s tracking the reference ref.
// It returns one of Moving, Holding or Failed.
func (l Limits) Classify(s State, ref float64) Mode {
	if math.Abs(s.PendPos) > l.PendMax {
		return Failed
	}

	if math.Abs(s.CartPos-ref) <= l.PosTol &&
		math.Abs(s.CartVel) <= l.VelTol &&
		math.Abs(s.PendPos) <= l.PendTol {
		return Holding
	}

	return Moving
}

// Modes classifies every sample of trajectory traj tracking ref.
// It returns error if traj does not contain the plant states.
func (l Limits) Modes(traj *sim.Trajectory, ref float64) ([]Mode, error) {
	if traj == nil {
		return nil, fmt.Errorf("invalid trajectory")
	}

	modes := make([]Mode, traj.Len())
	for k := range modes {
		s, err := StateFromVec(traj.StateAt(k))
		if err != nil {
			return nil, err
		}
		modes[k] = l.Classify(s, ref)
	}

	return modes, nil
}

// SettlingTime returns the time after which the plant holds ref until the end of traj.
// It returns false if the plant is not holding the reference at the end of traj.
func (l Limits) SettlingTime(traj *sim.Trajectory, ref float64) (float64, bool, error) {
	modes, err := l.Modes(traj, ref)
	if err != nil {
		return 0, false, err
	}

	k := len(modes)
	for k > 0 && modes[k-1] == Holding {
		k--
	}

	if k == len(modes) {
		return 0, false, nil
	}

	return traj.Time[k], true, nil
}

package sim

import (
	"fmt"
	"math"

	invpend "github.com/milosgajdos/go-invpend"
	"github.com/milosgajdos/go-invpend/control"
	"github.com/milosgajdos/go-invpend/noise"
	"gonum.org/v1/gonum/mat"
)

// Config configures a simulation run
type Config struct {
	// Ts is sampling period in seconds
	Ts float64
	// Horizon is simulated duration in seconds
	Horizon float64
	// Ref is reference (set-point) passed to controller
	Ref float64
	// InitState is initial state; zero vector if nil
	InitState mat.Vector
	// StateNoise is process noise added to propagated state; none if nil
	StateNoise invpend.Noise
	// OutputNoise is measurement noise added to output; none if nil
	OutputNoise invpend.Noise
}

// Steps returns the number of samples T = ceil(horizon/ts) of a simulation
// with sampling period ts run over the given horizon.
// It returns error if either ts or horizon are not positive finite numbers.
func Steps(ts, horizon float64) (int, error) {
	if !(ts > 0) || math.IsInf(ts, 0) {
		return 0, fmt.Errorf("invalid sampling period %v: %w", ts, ErrDimensionMismatch)
	}

	if !(horizon > 0) || math.IsInf(horizon, 0) {
		return 0, fmt.Errorf("invalid horizon %v: %w", horizon, ErrDimensionMismatch)
	}

	steps := math.Ceil(horizon / ts)
	if steps < 1 || steps > math.MaxInt32 {
		return 0, fmt.Errorf("invalid number of steps %v: %w", steps, ErrDimensionMismatch)
	}

	return int(steps), nil
}

// Trajectory stores time-indexed results of a simulation.
// State, Input and Output store one sample per column:
// column k holds the vectors at time Time[k].
type Trajectory struct {
	// Time contains sample instants k*Ts
	Time []float64
	// State is [nx x T] state trajectory
	State *mat.Dense
	// Input is [nu x T] control input trajectory
	Input *mat.Dense
	// Output is [ny x T] output trajectory
	Output *mat.Dense
}

func newTrajectory(steps int, ts float64, nx, nu, ny int) *Trajectory {
	t := make([]float64, steps)
	for k := range t {
		t[k] = float64(k) * ts
	}

	return &Trajectory{
		Time:   t,
		State:  mat.NewDense(nx, steps, nil),
		Input:  mat.NewDense(nu, steps, nil),
		Output: mat.NewDense(ny, steps, nil),
	}
}

// Len returns the number of samples in trajectory
func (t *Trajectory) Len() int {
	return len(t.Time)
}

// StateAt returns state vector at sample k
func (t *Trajectory) StateAt(k int) mat.Vector {
	return t.State.ColView(k)
}

// InputAt returns control input vector at sample k
func (t *Trajectory) InputAt(k int) mat.Vector {
	return t.Input.ColView(k)
}

// OutputAt returns output vector at sample k
func (t *Trajectory) OutputAt(k int) mat.Vector {
	return t.Output.ColView(k)
}

// Simulator runs a discrete-time system under a feedback controller
type Simulator struct {
	sys invpend.DiscreteControlSystem
	ctl invpend.Controller
}

// New creates new Simulator of the system sys controlled by ctl and returns it.
// It returns error if the controller dimensions do not match the system dimensions
// or if the system has no output.
func New(sys invpend.DiscreteControlSystem, ctl invpend.Controller) (*Simulator, error) {
	if sys == nil || ctl == nil {
		return nil, fmt.Errorf("system and controller must be defined")
	}

	nx, nu, ny, _ := sys.SystemDims()
	if nx <= 0 || nu <= 0 || ny <= 0 {
		return nil, fmt.Errorf("invalid system dimensions nx=%d nu=%d ny=%d: %w", nx, nu, ny, ErrDimensionMismatch)
	}

	cnx, cnu := ctl.Dims()
	if cnx != nx {
		return nil, fmt.Errorf("controller state dimension %d != %d: %w", cnx, nx, ErrDimensionMismatch)
	}

	if cnu != nu {
		return nil, fmt.Errorf("controller input dimension %d != %d: %w", cnu, nu, ErrDimensionMismatch)
	}

	return &Simulator{
		sys: sys,
		ctl: ctl,
	}, nil
}

// Run simulates the closed-loop system for ceil(Horizon/Ts) samples and returns its trajectory.
// For every sample k the controller computes u[k] from x[k], the output y[k] = C*x[k]
// is observed without feedthrough and, unless k is the last sample, the state is propagated
// to x[k+1] = A*x[k] + B*u[k]. All parameters are checked before the trajectory is allocated.
func (s *Simulator) Run(c Config) (*Trajectory, error) {
	nx, nu, ny, _ := s.sys.SystemDims()

	steps, err := Steps(c.Ts, c.Horizon)
	if err != nil {
		return nil, err
	}

	if math.IsNaN(c.Ref) || math.IsInf(c.Ref, 0) {
		return nil, fmt.Errorf("invalid reference %v: %w", c.Ref, ErrDimensionMismatch)
	}

	if c.InitState != nil && c.InitState.Len() != nx {
		return nil, fmt.Errorf("invalid initial state length %d: %w", c.InitState.Len(), ErrDimensionMismatch)
	}

	if err := checkNoise(c.StateNoise, nx); err != nil {
		return nil, fmt.Errorf("invalid state noise: %w", err)
	}

	if err := checkNoise(c.OutputNoise, ny); err != nil {
		return nil, fmt.Errorf("invalid output noise: %w", err)
	}

	traj := newTrajectory(steps, c.Ts, nx, nu, ny)

	x := mat.NewVecDense(nx, nil)
	if c.InitState != nil {
		x.CopyVec(c.InitState)
	}

	for k := 0; k < steps; k++ {
		setCol(traj.State, k, x)

		u, err := s.ctl.Control(x, c.Ref)
		if err != nil {
			return nil, fmt.Errorf("control failed at step %d: %w", k, err)
		}
		if u == nil || u.Len() != nu {
			return nil, fmt.Errorf("invalid control input at step %d: %w", k, ErrDimensionMismatch)
		}
		setCol(traj.Input, k, u)

		y, err := s.sys.Observe(x, nil, sample(c.OutputNoise))
		if err != nil {
			return nil, fmt.Errorf("observation failed at step %d: %w", k, err)
		}
		setCol(traj.Output, k, y)

		if k+1 < steps {
			xNext, err := s.sys.Propagate(x, u, sample(c.StateNoise))
			if err != nil {
				return nil, fmt.Errorf("propagation failed at step %d: %w", k, err)
			}
			x.CopyVec(xNext)
		}
	}

	return traj, nil
}

// Simulate runs the system with state matrix A, input matrix B and output matrix C
// under the state feedback control law u = nbar*r - K*x for ceil(horizon/ts) samples
// starting from zero state and returns its trajectory.
// It returns error wrapping ErrDimensionMismatch if the matrices are not conformant
// or if ts and horizon are not positive.
func Simulate(A, B, C, K *mat.Dense, nbar, r, ts, horizon float64) (*Trajectory, error) {
	if B == nil || C == nil {
		return nil, fmt.Errorf("control and output matrices must be defined: %w", ErrDimensionMismatch)
	}

	sys, err := NewDiscrete(A, B, C, nil, nil)
	if err != nil {
		return nil, err
	}

	ctl, err := control.NewStateFeedback(K, nbar)
	if err != nil {
		return nil, err
	}

	s, err := New(sys, ctl)
	if err != nil {
		return nil, err
	}

	return s.Run(Config{Ts: ts, Horizon: horizon, Ref: r})
}

func checkNoise(n invpend.Noise, size int) error {
	if n == nil {
		return nil
	}

	if _, ok := n.(*noise.None); ok {
		return nil
	}

	if n.Cov().SymmetricDim() != size {
		return fmt.Errorf("noise dimension %d != %d: %w", n.Cov().SymmetricDim(), size, ErrDimensionMismatch)
	}

	return nil
}

func sample(n invpend.Noise) mat.Vector {
	if n == nil {
		return nil
	}

	return n.Sample()
}

func setCol(m *mat.Dense, j int, v mat.Vector) {
	for i := 0; i < v.Len(); i++ {
		m.Set(i, j, v.AtVec(i))
	}
}

package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewContinuous(t *testing.T) {
	assert := assert.New(t)

	c, err := NewContinuous(A, B, C, D, E)
	assert.NotNil(c)
	assert.NoError(err)

	c, err = NewContinuous(nil, B, C, D, E)
	assert.Nil(c)
	assert.True(errors.Is(err, ErrDimensionMismatch))

	c, err = NewContinuous(mat.NewDense(2, 3, nil), B, C, D, E)
	assert.Nil(c)
	assert.True(errors.Is(err, ErrDimensionMismatch))
}

func TestContinuousPropagate(t *testing.T) {
	assert := assert.New(t)

	c, err := NewContinuous(A, B, C, D, E)
	assert.NoError(err)

	dt := 0.1
	v, err := c.Propagate(x, u, nil, dt)
	assert.NoError(err)
	// x + dt*(A*x + B*u)
	assert.InDeltaSlice([]float64{0.5 + dt*0.6, 0.6 + dt*-0.4}, mat.Col(nil, 0, v), 1e-12)

	v, err = c.Propagate(mat.NewVecDense(3, nil), u, nil, dt)
	assert.Nil(v)
	assert.Error(err)

	v, err = c.Propagate(x, mat.NewVecDense(3, nil), nil, dt)
	assert.Nil(v)
	assert.Error(err)
}

func TestToDiscrete(t *testing.T) {
	assert := assert.New(t)

	ts := 0.1

	// singular A: double integrator
	ct, err := NewContinuous(
		mat.NewDense(2, 2, []float64{0, 1, 0, 0}),
		mat.NewDense(2, 1, []float64{0, 1}),
		mat.NewDense(1, 2, []float64{1, 0}),
		nil, nil)
	assert.NoError(err)

	dt, err := ct.ToDiscrete(ts)
	assert.NoError(err)
	assert.True(mat.EqualApprox(mat.NewDense(2, 2, []float64{1, ts, 0, 1}), dt.A, 1e-9))
	assert.True(mat.EqualApprox(mat.NewDense(2, 1, []float64{ts * ts / 2, ts}), dt.B, 1e-9))
	// continuous model is left untouched
	assert.Equal(0.0, ct.A.At(0, 0))

	// non-singular A: first order lag
	ct, err = NewContinuous(
		mat.NewDense(1, 1, []float64{-1}),
		mat.NewDense(1, 1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}),
		nil, nil)
	assert.NoError(err)

	dt, err = ct.ToDiscrete(ts)
	assert.NoError(err)
	assert.InDelta(math.Exp(-ts), dt.A.At(0, 0), 1e-9)
	assert.InDelta(1-math.Exp(-ts), dt.B.At(0, 0), 1e-9)

	dt, err = ct.ToDiscrete(0)
	assert.Nil(dt)
	assert.True(errors.Is(err, ErrDimensionMismatch))
}

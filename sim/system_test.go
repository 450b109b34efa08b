package sim

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

var (
	x, u, q, r    *mat.VecDense
	A, B, C, D, E *mat.Dense
)

func setup() {
	x = mat.NewVecDense(2, []float64{0.5, 0.6})
	u = mat.NewVecDense(1, []float64{-1.0})

	// state and output noise
	q = mat.NewVecDense(2, nil)
	r = mat.NewVecDense(1, nil)

	A = mat.NewDense(2, 2, []float64{1.0, 1.0, 0.0, 1.0})
	B = mat.NewDense(2, 1, []float64{0.5, 1.0})
	C = mat.NewDense(1, 2, []float64{1.0, 0.0})
	D = mat.NewDense(1, 1, []float64{0.0})
	E = mat.NewDense(2, 1, []float64{1.0, 0})
}

func TestMain(m *testing.M) {
	// set up tests
	setup()
	// run the tests
	retCode := m.Run()
	// call with result of m.Run()
	os.Exit(retCode)
}

func TestNewDiscrete(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B, C, D, E)
	assert.NotNil(f)
	assert.NoError(err)

	// matrices are copied
	assert.NotSame(A, f.A)
	assert.True(mat.Equal(A, f.A))

	f, err = NewDiscrete(nil, B, C, D, E)
	assert.Nil(f)
	assert.True(errors.Is(err, ErrDimensionMismatch))

	for _, test := range []struct {
		A, B, C, D, E *mat.Dense
	}{
		{A: mat.NewDense(2, 3, nil), B: B, C: C},
		{A: A, B: mat.NewDense(3, 1, nil), C: C},
		{A: A, B: B, C: mat.NewDense(1, 3, nil)},
		{A: A, B: B, C: C, D: mat.NewDense(2, 1, nil)},
		{A: A, B: B, C: C, D: mat.NewDense(1, 2, nil)},
		{A: A, B: B, C: C, E: mat.NewDense(3, 1, nil)},
	} {
		f, err := NewDiscrete(test.A, test.B, test.C, test.D, test.E)
		assert.Nil(f)
		assert.True(errors.Is(err, ErrDimensionMismatch))
	}
}

func TestDiscretePropagate(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B, C, D, E)
	assert.NotNil(f)
	assert.NoError(err)

	v, err := f.Propagate(x, u, q)
	assert.NotNil(v)
	assert.NoError(err)
	// A*x + B*u
	assert.InDeltaSlice([]float64{0.6, -0.4}, mat.Col(nil, 0, v), 1e-12)

	_u := mat.NewVecDense(10, nil)
	v, err = f.Propagate(x, _u, q)
	assert.Nil(v)
	assert.Error(err)

	_x := mat.NewVecDense(10, nil)
	v, err = f.Propagate(_x, u, q)
	assert.Nil(v)
	assert.Error(err)

	v, err = f.Propagate(x, u, nil)
	assert.NotNil(v)
	assert.NoError(err)

	wd := mat.NewVecDense(2, []float64{1.0, 1.0})
	v, err = f.Propagate(x, u, wd)
	assert.NoError(err)
	assert.InDeltaSlice([]float64{1.6, 0.6}, mat.Col(nil, 0, v), 1e-12)
}

func TestDiscreteObserve(t *testing.T) {
	assert := assert.New(t)

	f, err := NewDiscrete(A, B, C, mat.NewDense(1, 1, []float64{2.0}), E)
	assert.NotNil(f)
	assert.NoError(err)

	v, err := f.Observe(x, u, r)
	assert.NotNil(v)
	assert.NoError(err)
	// C*x + D*u
	assert.InDelta(-1.5, v.AtVec(0), 1e-12)

	// no feedthrough without input
	v, err = f.Observe(x, nil, nil)
	assert.NoError(err)
	assert.InDelta(0.5, v.AtVec(0), 1e-12)

	_u := mat.NewVecDense(10, nil)
	v, err = f.Observe(x, _u, r)
	assert.Nil(v)
	assert.Error(err)

	_x := mat.NewVecDense(10, nil)
	v, err = f.Observe(_x, u, r)
	assert.Nil(v)
	assert.Error(err)

	v, err = f.Observe(x, u, nil)
	assert.NotNil(v)
	assert.NoError(err)

	noC, err := NewDiscrete(A, B, nil, nil, nil)
	assert.NoError(err)
	v, err = noC.Observe(x, nil, nil)
	assert.Nil(v)
	assert.Error(err)
}

func TestSystemMatrices(t *testing.T) {
	assert := assert.New(t)
	f := System{A, B, C, D, E}
	assert.NotNil(f)

	m := f.SystemMatrix()
	assert.True(mat.EqualApprox(m, A, 0.001))

	m = f.ControlMatrix()
	assert.True(mat.EqualApprox(m, B, 0.001))

	m = f.OutputMatrix()
	assert.True(mat.EqualApprox(m, C, 0.001))

	m = f.FeedForwardMatrix()
	assert.True(mat.EqualApprox(m, D, 0.001))

	empty := System{A: A}
	assert.Nil(empty.ControlMatrix())
	assert.Nil(empty.OutputMatrix())
	assert.Nil(empty.FeedForwardMatrix())
}

func TestSystemDims(t *testing.T) {
	assert := assert.New(t)
	f := System{A, B, C, D, E}
	assert.NotNil(f)

	nx, nu, ny, nz := f.SystemDims()
	r, c := A.Dims()
	assert.Equal(nx, r) // A is square [n,n]
	assert.Equal(nx, c)
	r, c = B.Dims()
	assert.Equal(nx, r) // B [n,p]
	assert.Equal(nu, c)
	r, c = C.Dims()
	assert.Equal(ny, r) // C [q,n]
	assert.Equal(nx, c)
	r, c = D.Dims()
	assert.Equal(ny, r) // D [q,p]
	assert.Equal(nu, c)
	r, c = E.Dims()
	assert.Equal(nx, r) // E [n,r]
	assert.Equal(nz, c)
}

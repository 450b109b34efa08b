package control

import (
	"errors"
	"math"
	"testing"

	invpend "github.com/milosgajdos/go-invpend"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestNewStateFeedback(t *testing.T) {
	assert := assert.New(t)

	K := mat.NewDense(1, 4, []float64{-61.9933, -33.5040, 95.0597, 18.8300})

	c, err := NewStateFeedback(K, -61.55)
	assert.NotNil(c)
	assert.NoError(err)

	nx, nu := c.Dims()
	assert.Equal(4, nx)
	assert.Equal(1, nu)
	assert.Equal(-61.55, c.Nbar())
	assert.True(mat.Equal(K, c.Gain()))

	// gain is copied
	K.Set(0, 0, 1.0)
	assert.Equal(-61.9933, c.Gain().At(0, 0))

	for _, test := range []struct {
		k    *mat.Dense
		nbar float64
	}{
		{k: nil, nbar: 1},
		{k: &mat.Dense{}, nbar: 1},
		{k: mat.NewDense(2, 4, nil), nbar: 1},
		{k: mat.NewDense(4, 1, nil), nbar: 1},
		{k: mat.NewDense(1, 2, []float64{math.NaN(), 0}), nbar: 1},
		{k: mat.NewDense(1, 2, nil), nbar: math.Inf(-1)},
	} {
		c, err := NewStateFeedback(test.k, test.nbar)
		assert.Nil(c)
		assert.True(errors.Is(err, invpend.ErrDimensionMismatch))
	}
}

func TestStateFeedbackControl(t *testing.T) {
	assert := assert.New(t)

	K := mat.NewDense(1, 4, []float64{-61.9933, -33.5040, 95.0597, 18.8300})
	c, err := NewStateFeedback(K, -61.55)
	assert.NoError(err)

	u, err := c.Control(mat.NewVecDense(4, nil), 0.2)
	assert.NoError(err)
	assert.Equal(1, u.Len())
	assert.InDelta(-12.31, u.AtVec(0), 1e-12)

	x := mat.NewVecDense(4, []float64{0.1, 0.2, 0.01, -0.02})
	u, err = c.Control(x, 0.2)
	assert.NoError(err)
	kx := -61.9933*0.1 + -33.5040*0.2 + 95.0597*0.01 + 18.8300*-0.02
	assert.InDelta(-61.55*0.2-kx, u.AtVec(0), 1e-12)

	u, err = c.Control(mat.NewVecDense(3, nil), 0.2)
	assert.Nil(u)
	assert.True(errors.Is(err, invpend.ErrDimensionMismatch))

	u, err = c.Control(nil, 0.2)
	assert.Nil(u)
	assert.Error(err)
}

func TestStateFeedbackString(t *testing.T) {
	assert := assert.New(t)

	c, err := NewStateFeedback(mat.NewDense(1, 2, []float64{1, 2}), 3)
	assert.NoError(err)

	str := `StateFeedback{
K=[1  2]
Nbar=3
}`
	assert.Equal(str, c.String())
}

var _ invpend.Controller = (*StateFeedback)(nil)

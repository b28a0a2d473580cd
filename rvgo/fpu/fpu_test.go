package fpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddSBasic(t *testing.T) {
	r, f := AddS(1.5, 2.5, RNE)
	require.EqualValues(t, 4.0, r)
	require.Zero(t, f)
}

func TestDivSByZeroNonZeroDividend(t *testing.T) {
	r, f := DivS(1, 0, RNE)
	require.True(t, math.IsInf(float64(r), 1))
	require.Equal(t, DZ, f)
}

func TestDivSZeroByZeroIsInvalid(t *testing.T) {
	r, f := DivS(0, 0, RNE)
	require.True(t, math.IsNaN(float64(r)))
	require.Equal(t, NV, f)
}

func TestSqrtSNegativeIsInvalid(t *testing.T) {
	_, f := SqrtS(-4, RNE)
	require.Equal(t, NV, f)
}

func TestMinSPropagatesNonNaNOverNaN(t *testing.T) {
	r, f := MinS(float32(math.NaN()), 3)
	require.EqualValues(t, 3, r)
	require.Zero(t, f)
}

func TestMinSBothNaNReturnsNaN(t *testing.T) {
	r, f := MinS(float32(math.NaN()), float32(math.NaN()))
	require.True(t, math.IsNaN(float64(r)))
	require.Equal(t, NV, f)
}

func TestLtSSignalsOnNaN(t *testing.T) {
	_, f := LtS(float32(math.NaN()), 1)
	require.Equal(t, NV, f)
}

func TestEqSQuietOnNaN(t *testing.T) {
	_, f := EqS(float32(math.NaN()), 1)
	require.Zero(t, f) // FEQ never signals on a quiet NaN
}

func TestSgnjSCopiesSign(t *testing.T) {
	r := SgnjS(5, -1, false, false)
	require.EqualValues(t, -5, r)
}

func TestSgnjSNegate(t *testing.T) {
	r := SgnjS(5, -1, true, false)
	require.EqualValues(t, 5, r)
}

func TestSgnjSXor(t *testing.T) {
	r := SgnjS(-5, -1, false, true)
	require.EqualValues(t, 5, r) // both negative -> XOR of signs is positive
}

func TestClassifyPositiveZero(t *testing.T) {
	require.EqualValues(t, 1<<4, ClassifyS(0))
}

func TestClassifyNegativeZero(t *testing.T) {
	require.EqualValues(t, 1<<3, ClassifyS(float32(math.Copysign(0, -1))))
}

func TestClassifyPositiveInfinity(t *testing.T) {
	require.EqualValues(t, 1<<7, ClassifyS(float32(math.Inf(1))))
}

func TestClassifyNegativeInfinity(t *testing.T) {
	require.EqualValues(t, 1<<0, ClassifyD(math.Inf(-1)))
}

func TestCvtFToS32Saturates(t *testing.T) {
	r, f := CvtFToS32(1e20, RNE)
	require.EqualValues(t, math.MaxInt32, r)
	require.Equal(t, NV, f)
}

func TestCvtFToU32RejectsNegative(t *testing.T) {
	r, f := CvtFToU32(-1, RNE)
	require.EqualValues(t, 0, r)
	require.Equal(t, NV, f)
}

func TestCvtS32ToFRoundTrip(t *testing.T) {
	require.EqualValues(t, -7, CvtS32ToF(-7))
}

func TestMulAddDFusedMultiplyAdd(t *testing.T) {
	r, f := MulAddD(2, 3, 1, RNE)
	require.EqualValues(t, 7, r)
	require.Zero(t, f)
}

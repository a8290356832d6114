package systems

import (
	"testing"

	"gonum.org/v1/gonum/blas/blas32"
)

// Benchmarks comparing a scalar blend of batched FABRIK joint positions
// against blas32, the same scalar-vs-BLAS comparison the corpus runs for
// its resource-field flow blending.
//
// The blend measured here moves each solved joint position toward its
// previous-frame position by a smoothing factor (the kind of smoothing
// that avoids a visible pop when a target snaps in). The pipeline's apply
// phase does not perform this blend; these benchmarks measure it in
// isolation. With many creatures and multi-joint limbs flattened into one
// array per axis, that blend is exactly the axpy/scal shape blas32
// accelerates.

func blendPositionsScalar(prevX, newX, outX []float32, t float32) {
	for i := range outX {
		outX[i] = prevX[i] + (newX[i]-prevX[i])*t
	}
}

func blendPositionsBLAS(prevX, newX, outX []float32, t float32) {
	n := len(outX)
	vPrev := blas32.Vector{N: n, Inc: 1, Data: prevX}
	vNew := blas32.Vector{N: n, Inc: 1, Data: newX}
	vOut := blas32.Vector{N: n, Inc: 1, Data: outX}

	blas32.Copy(vPrev, vOut)
	blas32.Scal(1-t, vOut)
	blas32.Axpy(t, vNew, vOut)
}

func setupJointAxis(size int) (prev, next []float32) {
	prev = make([]float32, size)
	next = make([]float32, size)
	for i := range prev {
		prev[i] = float32(i) * 0.001
		next[i] = float32(i) * 0.0015
	}
	return prev, next
}

// jointAxisSize approximates 200 creatures x 4 limbs x 6 FABRIK joints.
const jointAxisSize = 200 * 4 * 6

func BenchmarkBlendJointPositions_Scalar(b *testing.B) {
	prev, next := setupJointAxis(jointAxisSize)
	out := make([]float32, jointAxisSize)
	t := float32(0.35)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		blendPositionsScalar(prev, next, out, t)
	}
}

func BenchmarkBlendJointPositions_BLAS(b *testing.B) {
	prev, next := setupJointAxis(jointAxisSize)
	out := make([]float32, jointAxisSize)
	t := float32(0.35)

	// blas32.Copy/Scal/Axpy mutate out in place each call, matching the
	// per-tick reuse pattern the pipeline would actually use.
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		blendPositionsBLAS(prev, next, out, t)
	}
}

func BenchmarkIKResidualSum_Scalar(b *testing.B) {
	residuals := make([]float32, jointAxisSize)
	for i := range residuals {
		residuals[i] = float32(i) * 0.0001
	}

	b.ResetTimer()
	var total float32
	for n := 0; n < b.N; n++ {
		total = 0
		for _, v := range residuals {
			total += v
		}
	}
	_ = total
}

func BenchmarkIKResidualSum_BLAS(b *testing.B) {
	residuals := make([]float32, jointAxisSize)
	for i := range residuals {
		residuals[i] = float32(i) * 0.0001
	}
	v := blas32.Vector{N: len(residuals), Inc: 1, Data: residuals}

	b.ResetTimer()
	var total float32
	for n := 0; n < b.N; n++ {
		total = blas32.Asum(v)
	}
	_ = total
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package embedding

import "math"

// L2Norm computes the L2 (Euclidean) norm of a float32 vector.
func L2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// DotProduct computes the dot product of two float32 vectors.
// Vectors of different lengths have no defined similarity; the result is 0.
func DotProduct(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Normalize returns a unit-length copy of v, or nil if v has zero norm.
// Storing unit vectors makes cosine similarity a plain dot product at query
// time and keeps the zero-norm degenerate case from producing NaN.
func Normalize(v []float32) []float32 {
	norm := L2Norm(v)
	if norm == 0 {
		return nil
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / float32(norm)
	}
	return out
}

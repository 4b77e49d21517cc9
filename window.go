//
// Copyright (c) 2025, Antonio Chirizzi <antonio.chirizzi@gmail.com>
// All rights reserved.
//
// This code is released under 3-clause BSD license. Please see the
// file LICENSE
//

package wsola

import "math"

// olaWindow returns a symmetric Hann window of length n:
//
//	w[i] = 0.5 * (1 - cos(2*pi*i/(n-1)))
//
// Two half-overlapping copies of this window sum to (approximately) 1,
// which is what lets blind overlap-add preserve amplitude. n must be
// even and at least 2; the caller (New) enforces this.
func olaWindow(n int) []float32 {
	w := make([]float32, n)
	if n < 2 {
		if n == 1 {
			w[0] = 1
		}
		return w
	}
	denom := float64(n - 1)
	for i := 0; i < n; i++ {
		w[i] = float32(0.5 * (1 - math.Cos(2*math.Pi*float64(i)/denom)))
	}
	return w
}

// transitionWindow returns a length-2n linear cross-fade table used to
// blend a target block into an optimal block: it rises 0->1 over the
// first n samples and falls 1->0 over the second n, clamped to [0, 1].
func transitionWindow(n int) []float32 {
	t := make([]float32, 2*n)
	if n < 2 {
		for i := range t {
			if i < n {
				t[i] = 0
			} else {
				t[i] = 1
			}
		}
		return t
	}
	denom := float64(n - 1)
	for i := 0; i < 2*n; i++ {
		var v float64
		if i < n {
			v = float64(i) / denom
		} else {
			v = 2 - float64(i)/denom
		}
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		t[i] = float32(v)
	}
	return t
}

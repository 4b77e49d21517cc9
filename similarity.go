//
// Copyright (c) 2025, Antonio Chirizzi <antonio.chirizzi@gmail.com>
// All rights reserved.
//
// This code is released under 3-clause BSD license. Please see the
// file LICENSE
//

package wsola

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// similarityEpsilon guards the energy-normalized score against division
// by (near) zero on silent or near-silent blocks.
const similarityEpsilon = 1e-30

// similaritySearch returns the offset k* in [0, numCandidateBlocks) whose
// window over e.searchBlock maximizes an energy-normalized,
// center-weighted similarity with e.targetBlock.
//
// D_k (the windowed cross-correlation) is recomputed from scratch every
// k via vecmath.DotProduct, since each k pairs the fixed windowed target
// with a different slice of searchBlock. E_k (the candidate energy) is tracked
// incrementally over the raw, un-windowed candidate samples: the first
// E_0 is a from-scratch sum of squares, and each subsequent E_k
// subtracts the leaving sample's square and adds the entering one. A
// Hann window has w[0]==w[n-1]==0, so weighting the leaving/entering
// pair by the window (as a literal reading of the energy formula would)
// makes every update a no-op and the recurrence degenerate to a
// constant E_k for every k, defeating the normalization outright.
// Dropping the window from the energy term keeps the recurrence exact
// and keeps it actually discriminating between candidates, matching how
// the original scaletempo2 candidate-energy term is computed.
func (e *Engine) similaritySearch() int {
	n := e.olaWindowSize
	k := e.numCandidateBlocks

	kCenter := e.outputTime - float64(e.searchBlockIndex) - (float64(n)/2 - 1)
	if kCenter < 0 {
		kCenter = 0
	}
	if kCenter > float64(k-1) {
		kCenter = float64(k - 1)
	}

	wt := e.scratchWeightedTarget
	for ch := 0; ch < e.channels; ch++ {
		tgt := e.targetBlock[ch]
		row := wt[ch]
		for i := 0; i < n; i++ {
			row[i] = float64(e.olaWindow[i]) * float64(tgt[i])
		}
	}

	var energyT float64
	for ch := 0; ch < e.channels; ch++ {
		energyT += vecmath.DotProduct(wt[ch], wt[ch])
	}

	perChannelE := e.scratchChannelEnergy
	candScratch := e.scratchCandidate
	var totalE float64
	for ch := 0; ch < e.channels; ch++ {
		row := float64SliceInto(candScratch[ch][:0], e.searchBlock[ch][:n])
		e0 := vecmath.DotProduct(row, row)
		perChannelE[ch] = e0
		totalE += e0
	}

	bestK := 0
	bestScore := -1.0
	allSilent := true

	for off := 0; off < k; off++ {
		if off > 0 {
			totalE = 0
			for ch := 0; ch < e.channels; ch++ {
				search := e.searchBlock[ch]
				leaving := float64(search[off-1])
				entering := float64(search[off-1+n])
				perChannelE[ch] += entering*entering - leaving*leaving
				totalE += perChannelE[ch]
			}
		}

		if totalE > similarityEpsilon {
			allSilent = false
		}

		var d float64
		for ch := 0; ch < e.channels; ch++ {
			search := e.searchBlock[ch]
			d += vecmath.DotProduct(wt[ch], float64SliceInto(candScratch[ch][:0], search[off:off+n]))
		}

		var score float64
		if d > 0 {
			score = (d * d) / (energyT*totalE + similarityEpsilon)
		}

		weight := 1 - math.Abs(float64(off)-kCenter)/float64(k)
		if weight < 0 {
			weight = 0
		}
		score *= weight

		if score > bestScore {
			bestScore = score
			bestK = off
		}
	}

	if allSilent {
		return int(math.Round(kCenter))
	}
	return bestK
}

// float64SliceInto overwrites dst (truncated to 0 length by the caller,
// but backed by capacity >= len(src)) with src converted to float64 and
// returns the resulting slice. It exists so the D_k inner loop can reuse
// one scratch buffer instead of allocating per candidate.
func float64SliceInto(dst []float64, src []float32) []float64 {
	out := dst[:len(src)]
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}

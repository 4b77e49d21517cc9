//
// Copyright (c) 2025, Antonio Chirizzi <antonio.chirizzi@gmail.com>
// All rights reserved.
//
// This code is released under 3-clause BSD license. Please see the
// file LICENSE
//

package wsola

// extractTarget fills e.targetBlock (olaWindowSize frames) from the input
// buffer at the given integer frame index, zero-padding as needed.
func (e *Engine) extractTarget(targetBlockIndex int) {
	e.inputBuffer.peekWithZeroPrepend(e.targetBlock, targetBlockIndex, e.olaWindowSize)
	e.chargeEOSPadding(targetBlockIndex, e.olaWindowSize)
}

// extractSearch fills e.searchBlock (searchBlockSize frames) from the
// input buffer at the given integer frame index, zero-padding as needed.
func (e *Engine) extractSearch(searchBlockIndex int) {
	e.inputBuffer.peekWithZeroPrepend(e.searchBlock, searchBlockIndex, e.searchBlockSize)
	e.chargeEOSPadding(searchBlockIndex, e.searchBlockSize)
}

// extractOptimal copies olaWindowSize frames out of the already-filled
// search block starting at sourceOffset, which must lie in
// [0, numCandidateBlocks): the search block holds
// numCandidateBlocks+olaWindowSize-1 frames.
func (e *Engine) extractOptimal(sourceOffset int) {
	for ch := 0; ch < e.channels; ch++ {
		copy(e.optimalBlock[ch], e.searchBlock[ch][sourceOffset:sourceOffset+e.olaWindowSize])
	}
}

// chargeEOSPadding accounts for zero padding synthesized by a peek that
// straddles the end of the live input while EOS silence is still owed:
// every padded frame past the live region, up to the amount still owed,
// is treated as having been "consumed" out of inputBufferFinalFrames and
// moved into inputBufferAddedSilence. This is what lets repeated
// FillBuffer calls after SetFinal eventually converge to
// FramesAvailable() == false instead of padding forever.
func (e *Engine) chargeEOSPadding(start, length int) {
	if e.inputBufferFinalFrames <= 0 {
		return
	}
	frames := e.inputBuffer.frames
	end := start + length
	if end <= frames {
		return
	}
	paddedStart := start
	if paddedStart < frames {
		paddedStart = frames
	}
	padded := end - paddedStart
	if padded > e.inputBufferFinalFrames {
		padded = e.inputBufferFinalFrames
	}
	e.inputBufferFinalFrames -= padded
	e.inputBufferAddedSilence += padded
}

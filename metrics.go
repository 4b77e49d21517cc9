//
// Copyright (c) 2025, Antonio Chirizzi <antonio.chirizzi@gmail.com>
// All rights reserved.
//
// This code is released under 3-clause BSD license. Please see the
// file LICENSE
//

package wsola

// Metrics is a point-in-time snapshot of an Engine's internal counters,
// useful for diagnostics or logging by an embedding host. The engine is a
// synchronous, single-threaded, embeddable transform and carries no
// metrics system of its own; Metrics is returned by value so a caller can
// sample it without holding a reference into the engine.
type Metrics struct {
	// HopsRun is the number of WSOLA iterations completed.
	HopsRun uint64
	// FramesEvicted is the total number of input frames discarded by the
	// eviction policy once they fall out of the live search window.
	FramesEvicted uint64
	// FramesMuted is the total number of output frames emitted as
	// silence because the requested rate fell outside
	// [MinPlaybackRate, MaxPlaybackRate].
	FramesMuted uint64
}

// Metrics returns a snapshot of e's counters. Calling it on a nil or
// closed Engine returns the zero value.
func (e *Engine) Metrics() Metrics {
	if e == nil || e.closed {
		return Metrics{}
	}
	return e.metrics
}

package pegasus

import "errors"

var (
	// ErrStopped is returned by Swing when no frame will ever arrive: the
	// recording side has exited or the pipeline was closed. Callers should
	// stop presenting.
	ErrStopped = errors.New("pegasus: pipeline stopped")

	// ErrSwingInFlight is returned by Swing when the previous Swing has not
	// been released yet.
	ErrSwingInFlight = errors.New("pegasus: previous swing not released")

	// ErrFlush wraps errors returned by Device.Flush.
	ErrFlush = errors.New("pegasus: flush failed")

	// ErrNilStart is returned by New when Init.Start is nil.
	ErrNilStart = errors.New("pegasus: Init.Start is nil")

	// ErrNilPaint is returned by New when the paint function is nil.
	ErrNilPaint = errors.New("pegasus: paint function is nil")

	// ErrNilPlanner is returned by New when Init.Start returns a nil planner.
	ErrNilPlanner = errors.New("pegasus: Init.Start returned a nil planner")
)

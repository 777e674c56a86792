package browser

import "errors"

// Browser lifecycle and step errors.
//
// Design decision: We define sentinel errors and wrap them with step
// context at the failure site. Callers distinguish failure modes with
// errors.Is (a launch failure is fatal to a call; a step timeout inside
// a batch is recorded per target).
var (
	// ErrLaunch is returned when the Chrome process fails to start.
	// This is fatal for the scan that requested the session.
	ErrLaunch = errors.New("failed to launch browser")

	// ErrStepTimeout is returned when a navigation or wait step exceeds
	// the configured step timeout. The page and session are torn down
	// before this error surfaces.
	ErrStepTimeout = errors.New("step exceeded timeout")

	// ErrNavigation is returned when the browser cannot load a target.
	ErrNavigation = errors.New("navigation failed")
)

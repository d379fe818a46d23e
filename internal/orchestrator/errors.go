package orchestrator

import "errors"

// Caller errors — reported synchronously, never retried.
var (
	ErrNullArgument               = errors.New("orchestrator: null argument")
	ErrUnknownSubsystem           = errors.New("orchestrator: unknown subsystem")
	ErrAlreadyRegisteredDifferent = errors.New("orchestrator: subsystem already registered with a different dependency shape")
	ErrCycleDetected              = errors.New("orchestrator: dependency cycle detected")
	ErrIllegalTransition          = errors.New("orchestrator: illegal state transition")
)

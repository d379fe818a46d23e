package dbqueue

import "errors"

var (
	// Caller errors — reported synchronously, never retried.
	ErrNullArgument          = errors.New("dbqueue: null argument")
	ErrUnknownDatabase       = errors.New("dbqueue: unknown database")
	ErrUnknownQueryID        = errors.New("dbqueue: unknown query id")
	ErrParameterNotFound     = errors.New("dbqueue: parameter not found")
	ErrNoChildQueueForPrio   = errors.New("dbqueue: no child queue for priority")
	ErrNotLeadQueue          = errors.New("dbqueue: not a lead queue")
	ErrNullQueueType         = errors.New("dbqueue: null queue type")
	ErrNullQueue             = errors.New("dbqueue: null queue")
	ErrInvalidTTL            = errors.New("dbqueue: ttl must be greater than zero")

	// Transient failures — retried by the lead queue on its next cycle.
	ErrConnectFailed     = errors.New("dbqueue: connect failed")
	ErrHealthCheckFailed = errors.New("dbqueue: health check failed")
	ErrPrepareFailed     = errors.New("dbqueue: prepare failed")
	ErrExecuteFailed     = errors.New("dbqueue: execute failed")
	ErrBootstrapFailed   = errors.New("dbqueue: bootstrap failed")
	ErrMigrationStep     = errors.New("dbqueue: migration step failed")

	// Resource failures — surfaced to caller, not retried by the core.
	ErrAllocationFailed     = errors.New("dbqueue: allocation failed")
	ErrCapacityExceeded     = errors.New("dbqueue: capacity exceeded")
	ErrBackpressureRejected = errors.New("dbqueue: backpressure rejected")

	// Timing failures.
	ErrResultTimeout            = errors.New("dbqueue: result timeout")
	ErrInitialConnectionTimeout = errors.New("dbqueue: initial connection timeout")
	ErrAborted                  = errors.New("dbqueue: aborted by shutdown")

	// Fatal — the affected subsystem transitions to Error and requires a
	// process restart.
	ErrCorruptedHandle  = errors.New("dbqueue: corrupted connection handle")
	ErrRegistryPoisoned = errors.New("dbqueue: registry poisoned")
)

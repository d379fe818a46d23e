// Package print supplies the Print subsystem: queues print jobs into
// the "jobs" database via the Database subsystem's fast-tier queue.
// G-code parsing and print-head control are out of scope; this owns
// job bookkeeping only.
package print

import (
	"context"
	"time"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

// JobsDatabase names the logical database print jobs are recorded
// against; it must appear in HYDROGEN_DATABASES for Print to be useful,
// but its absence does not fail CheckReady — Print degrades to a no-op.
const JobsDatabase = "jobs"

const postProcessorBufferSize = 8192

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("Print")

	return &orchestrator.Subsystem{
		Name:         "Print",
		Dependencies: []string{"Database"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			log.Info("print subsystem ready to accept jobs")
			return true
		},
		Land: func() bool {
			return true
		},
	}
}

// EnqueueJob submits a print job's metadata for persistence. payload is
// capped at postProcessorBufferSize bytes of post-processed G-code
// metadata, matching the core's documented buffer default.
func EnqueueJob(ctx *apphost.Context, jobID, payload string) (string, error) {
	if len(payload) > postProcessorBufferSize {
		payload = payload[:postProcessorBufferSize]
	}

	queryCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return ctx.DBQueue.SubmitQuery(queryCtx, JobsDatabase, dbqueue.Fast, dbqueue.Request{
		SQL: "INSERT INTO print_jobs (job_id, payload) VALUES (:job_id, :payload)",
		Params: dbqueue.ParameterList{
			{Name: "job_id", Type: "STRING", Value: jobID},
			{Name: "payload", Type: "STRING", Value: payload},
		},
	}, 30*time.Second)
}

// Package payload supplies the Payload subsystem: bounded buffer pools
// for command/response bodies flowing through the WebServer and
// WebSocket subsystems, sized to the core's documented defaults:
// command buffer 4 KiB, response buffer 16 KiB.
package payload

import (
	"sync"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

const (
	CommandBufferSize  = 4 * 1024
	ResponseBufferSize = 16 * 1024
)

// Pools exposes sync.Pool instances for command/response byte buffers.
type Pools struct {
	Command  *sync.Pool
	Response *sync.Pool
}

// PoolsKey stashes *Pools on the AppContext.
const PoolsKey = "payload.pools"

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	pools := &Pools{
		Command:  &sync.Pool{New: func() any { return make([]byte, 0, CommandBufferSize) }},
		Response: &sync.Pool{New: func() any { return make([]byte, 0, ResponseBufferSize) }},
	}

	return &orchestrator.Subsystem{
		Name:         "Payload",
		Dependencies: []string{"Logging"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			ctx.Put(PoolsKey, pools)
			return true
		},
		Land: func() bool {
			return true
		},
	}
}

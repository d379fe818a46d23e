// Package threads supplies the Threads subsystem: periodically samples
// every registered subsystem's worker thread resource usage into the
// Subsystem Thread Table using gopsutil.
package threads

import (
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

const sampleInterval = 5 * time.Second

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	stop := make(chan struct{})

	return &orchestrator.Subsystem{
		Name:         "Threads",
		Dependencies: []string{"Logging"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			go sampleLoop(ctx, stop)
			return true
		},
		Land: func() bool {
			select {
			case <-stop:
			default:
				close(stop)
			}
			return true
		},
	}
}

func sampleLoop(ctx *apphost.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			sampleOnce(ctx)
		}
	}
}

func sampleOnce(ctx *apphost.Context) {
	for _, id := range ctx.Registry.RegistrationOrder() {
		table, err := ctx.Registry.ThreadTable(id)
		if err != nil || table == nil {
			continue
		}

		var virtual, resident uint64
		for _, th := range table.Threads() {
			proc, err := process.NewProcess(int32(th.TID))
			if err != nil {
				continue
			}
			memInfo, err := proc.MemoryInfo()
			if err != nil || memInfo == nil {
				continue
			}
			table.SetThreadMetrics(th.ThreadID, orchestrator.ThreadMetrics{
				RSSBytes:     memInfo.RSS,
				VirtualBytes: memInfo.VMS,
			})
			virtual += memInfo.VMS
			resident += memInfo.RSS
		}
		table.SetAggregate(orchestrator.ThreadAggregate{
			VirtualMemory:  virtual,
			ResidentMemory: resident,
		})
	}
}

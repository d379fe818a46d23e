// Package resources supplies the Resources subsystem: exposes host-wide
// CPU/memory gauges on the Prometheus registry so operators can
// correlate daemon behavior with machine load, independent of the
// per-subsystem Thread Table sampling done by the Threads subsystem.
package resources

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

const sampleInterval = 10 * time.Second

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("Resources")

	cpuGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hydrogen_host_cpu_percent",
		Help: "Host-wide CPU utilization percent sampled by the Resources subsystem.",
	})
	memGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hydrogen_host_memory_percent",
		Help: "Host-wide memory utilization percent sampled by the Resources subsystem.",
	})

	stop := make(chan struct{})

	return &orchestrator.Subsystem{
		Name:         "Resources",
		Dependencies: []string{"Logging"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			if err := ctx.Metrics.Register(cpuGauge); err != nil {
				log.WithError(err).Warn("cpu gauge already registered")
			}
			if err := ctx.Metrics.Register(memGauge); err != nil {
				log.WithError(err).Warn("memory gauge already registered")
			}
			go sampleLoop(stop, cpuGauge, memGauge)
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

func sampleLoop(stop <-chan struct{}, cpuGauge, memGauge prometheus.Gauge) {
	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
				cpuGauge.Set(percentages[0])
			}
			if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
				memGauge.Set(vm.UsedPercent)
			}
		}
	}
}

// Package network supplies the Network subsystem: resolves and holds
// the local bind address that WebServer listens on (through
// ResolveBindAddress). MDNSServer, MDNSClient and MailRelay depend on
// Network but do not read this address.
package network

import (
	"fmt"
	"net"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

// BindAddress is stashed on the AppContext under this key once Network
// has launched.
const BindAddress = "network.bind_address"

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("Network")

	return &orchestrator.Subsystem{
		Name:         "Network",
		Dependencies: []string{"Logging"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			ifaces, err := net.Interfaces()
			if err != nil || len(ifaces) == 0 {
				return orchestrator.ReadinessVerdict{Ready: false, Messages: []string{"no network interfaces available"}}
			}
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			ctx.Put(BindAddress, "0.0.0.0")
			log.Info("network subsystem launched")
			return true
		},
		Land: func() bool {
			log.Info("network subsystem landed")
			return true
		},
	}
}

// ResolveBindAddress reads the bind address Network published, falling
// back to a sane default if Network has not launched (tests exercising
// a subsystem in isolation).
func ResolveBindAddress(ctx *apphost.Context, port int) string {
	addr, ok := ctx.Get(BindAddress)
	if !ok {
		addr = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", addr, port)
}

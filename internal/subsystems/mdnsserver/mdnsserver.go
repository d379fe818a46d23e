// Package mdnsserver supplies the MDNSServer subsystem: opens the UDP
// multicast socket mDNS responders listen on. DNS-SD record encoding is
// out of scope — this subsystem owns the socket
// lifecycle only.
package mdnsserver

import (
	"net"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

var mdnsGroup = &net.UDPAddr{IP: net.ParseIP("224.0.0.251"), Port: 5353}

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("MDNSServer")

	var conn *net.UDPConn

	return &orchestrator.Subsystem{
		Name:         "MDNSServer",
		Dependencies: []string{"Network"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			c, err := net.ListenMulticastUDP("udp4", nil, mdnsGroup)
			if err != nil {
				log.WithError(err).Warn("mdns multicast listen failed, subsystem degraded")
				return true // non-fatal: mDNS is best-effort discovery
			}
			conn = c
			go drain(conn)
			return true
		},
		Land: func() bool {
			if conn != nil {
				_ = conn.Close()
			}
			return true
		},
	}
}

func drain(conn *net.UDPConn) {
	buf := make([]byte, 4096)
	for {
		if _, _, err := conn.ReadFromUDP(buf); err != nil {
			return
		}
	}
}

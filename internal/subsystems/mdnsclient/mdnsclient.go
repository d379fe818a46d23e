// Package mdnsclient supplies the MDNSClient subsystem: periodically
// sends an empty presence datagram to the multicast group MDNSServer
// listens on. It encodes no mDNS query records and parses no responses.
package mdnsclient

import (
	"net"
	"time"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

const queryInterval = 30 * time.Second

var mdnsGroup = &net.UDPAddr{IP: net.ParseIP("224.0.0.251"), Port: 5353}

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("MDNSClient")

	stop := make(chan struct{})
	var conn *net.UDPConn

	return &orchestrator.Subsystem{
		Name:         "MDNSClient",
		Dependencies: []string{"Network"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			c, err := net.DialUDP("udp4", nil, mdnsGroup)
			if err != nil {
				log.WithError(err).Warn("mdns client dial failed, subsystem degraded")
				return true
			}
			conn = c
			go queryLoop(conn, stop)
			return true
		},
		Land: func() bool {
			select {
			case <-stop:
			default:
				close(stop)
			}
			if conn != nil {
				_ = conn.Close()
			}
			return true
		},
	}
}

func queryLoop(conn *net.UDPConn, stop <-chan struct{}) {
	ticker := time.NewTicker(queryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			_, _ = conn.Write([]byte{}) // presence ping; record encoding out of scope
		}
	}
}

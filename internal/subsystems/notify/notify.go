// Package notify supplies the Notify subsystem: forwards device events
// (job complete, error) as email through the mail relay. It does not
// publish to the WebSocket hub.
package notify

import (
	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/mailrelay"
)

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("Notify")

	var relay *mailrelay.Relay

	return &orchestrator.Subsystem{
		Name:         "Notify",
		Dependencies: []string{"MailRelay", "Logging"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			relayVal, ok := ctx.Get(mailrelay.RelayKey)
			if !ok {
				log.Error("mail relay not available")
				return false
			}
			relay = relayVal.(*mailrelay.Relay)
			ctx.Put("notify.relay", relay)
			return true
		},
		Land: func() bool {
			return true
		},
	}
}

// Notify sends subject/body to recipient through the configured relay.
func Notify(ctx *apphost.Context, recipient, subject, body string) error {
	relayVal, ok := ctx.Get(mailrelay.RelayKey)
	if !ok {
		return nil
	}
	return relayVal.(*mailrelay.Relay).Send(recipient, subject, body)
}

// Package mailrelay supplies the MailRelay subsystem: a relay handle
// whose Send forwards one outbound notification email over SMTP
// synchronously, on the caller's goroutine. SMTP protocol
// correctness beyond RFC 5321's basic DATA command is out of scope —
// this is a thin real capability, not a full mail transfer agent.
package mailrelay

import (
	"fmt"
	"net/smtp"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

// RelayKey stashes the *Relay on the AppContext for Notify to use.
const RelayKey = "mailrelay.relay"

// Relay sends mail through a configured SMTP relay host.
type Relay struct {
	Host string
	From string
}

// Send delivers a single plaintext message. It is best-effort: SMTP
// errors are returned to the caller, never retried internally.
func (r *Relay) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", r.From, to, subject, body)
	return smtp.SendMail(r.Host, nil, r.From, []string{to}, []byte(msg))
}

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("MailRelay")

	relay := &Relay{Host: "localhost:25", From: "hydrogen@localhost"}

	return &orchestrator.Subsystem{
		Name:         "MailRelay",
		Dependencies: []string{"Network", "Logging"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			ctx.Put(RelayKey, relay)
			log.Info("mail relay subsystem launched")
			return true
		},
		Land: func() bool {
			return true
		},
	}
}

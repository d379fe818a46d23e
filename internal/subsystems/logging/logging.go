// Package logging supplies the Logging subsystem: on launch it builds a
// zerolog console logger and publishes it under "logging.shipper" as a
// secondary sink. It does not forward the logrus output that every
// subsystem writes through.
package logging

import (
	"github.com/rs/zerolog"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

// Build constructs the Logging subsystem. It has no dependencies; many
// other subsystems list Logging as a dependency, directly or through
// Network.
func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("Logging")

	var shipper zerolog.Logger

	return &orchestrator.Subsystem{
		Name:         "Logging",
		Dependencies: nil,
		CheckReady: func() orchestrator.ReadinessVerdict {
			if ctx.Config == nil {
				return orchestrator.ReadinessVerdict{Ready: false, Messages: []string{"no configuration loaded"}}
			}
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			shipper = zerolog.New(zerolog.NewConsoleWriter()).With().
				Str("component", "hydrogend").
				Timestamp().
				Logger()
			ctx.Put("logging.shipper", &shipper)
			log.Info("logging subsystem launched")
			return true
		},
		Land: func() bool {
			log.Info("logging subsystem landed")
			return true
		},
	}
}

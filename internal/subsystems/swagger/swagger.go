// Package swagger supplies the Swagger subsystem: serves a static
// OpenAPI document describing the API subsystem's routes on the shared
// WebServer router.
package swagger

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/httpserver"
)

const openAPIDocument = `{
  "openapi": "3.0.0",
  "info": {"title": "Hydrogen Device API", "version": "1.0"},
  "paths": {
    "/api/v1/databases/{name}/query": {
      "post": {"summary": "Submit a query to a configured database"}
    }
  }
}`

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("Swagger")

	return &orchestrator.Subsystem{
		Name:         "Swagger",
		Dependencies: []string{"API"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			routerVal, ok := ctx.Get(httpserver.RouterKey)
			if !ok {
				log.Error("web server router not available")
				return false
			}
			router := routerVal.(*mux.Router)
			router.HandleFunc("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(openAPIDocument))
			}).Methods(http.MethodGet)
			return true
		},
		Land: func() bool {
			return true
		},
	}
}

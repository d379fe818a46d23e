// Package oidc supplies the OIDC subsystem: mounts a minimal
// OpenID-Connect-style callback on the shared WebServer router that
// only checks an authorization code is present. It mounts no login
// redirect and performs no token or JWKS validation.
package oidc

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/httpserver"
)

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("OIDC")

	return &orchestrator.Subsystem{
		Name:         "OIDC",
		Dependencies: []string{"WebServer", "Network"},
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
			router.HandleFunc("/oidc/callback", func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("code") == "" {
					http.Error(w, "missing authorization code", http.StatusBadRequest)
					return
				}
				w.WriteHeader(http.StatusOK)
			}).Methods(http.MethodGet)
			return true
		},
		Land: func() bool {
			return true
		},
	}
}

// Package httpserver supplies the WebServer subsystem: the daemon's
// sole HTTP listener, hosting /metrics, /system/status, and whatever
// routes sibling subsystems (API, Swagger, OIDC) mount on its shared
// *mux.Router from their own Launch, after it is already running.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/network"
)

// RouterKey is where the shared *mux.Router is stashed on the
// AppContext at Build time so subsystems that depend on WebServer (API,
// Swagger, OIDC) can mount their own routes when they launch.
const RouterKey = "httpserver.router"

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("WebServer")

	router := mux.NewRouter()
	ctx.Put(RouterKey, router)

	limiter := rate.NewLimiter(rate.Limit(100), 50)

	var server *http.Server

	return &orchestrator.Subsystem{
		Name:         "WebServer",
		Dependencies: []string{"Network", "Logging"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			if ctx.Config.HTTPPort <= 0 {
				return orchestrator.ReadinessVerdict{Ready: false, Messages: []string{"no HTTP port configured"}}
			}
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			registerBuiltinRoutes(ctx, router)

			addr := network.ResolveBindAddress(ctx, ctx.Config.HTTPPort)
			server = &http.Server{
				Addr:    addr,
				Handler: rateLimited(limiter, router),
			}
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.WithError(err).Error("http server stopped unexpectedly")
				}
			}()
			log.WithField("addr", addr).Info("web server listening")
			return true
		},
		Land: func() bool {
			if server == nil {
				return true
			}
			ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(ctxTimeout); err != nil {
				log.WithError(err).Warn("http server shutdown did not complete cleanly")
			}
			return true
		},
	}
}

func rateLimited(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func registerBuiltinRoutes(ctx *apphost.Context, router *mux.Router) {
	if ctx.Config.MetricsEnabled {
		router.Handle("/metrics", promhttp.HandlerFor(ctx.Metrics, promhttp.HandlerOpts{}))
	}

	router.HandleFunc("/system/status", func(w http.ResponseWriter, r *http.Request) {
		writeSystemStatus(ctx, w)
	}).Methods(http.MethodGet)
}

// systemStatus is the introspection payload served at /system/status:
// registry state and thread counts for every registered subsystem.
type systemStatus struct {
	Subsystems []subsystemStatus `json:"subsystems"`
}

type subsystemStatus struct {
	Name        string `json:"name"`
	State       string `json:"state"`
	ThreadCount int    `json:"thread_count"`
}

func writeSystemStatus(ctx *apphost.Context, w http.ResponseWriter) {
	var out systemStatus
	for _, id := range ctx.Registry.RegistrationOrder() {
		name, _ := ctx.Registry.Name(id)
		state, _ := ctx.Registry.LookupState(id)
		count := 0
		if table, err := ctx.Registry.ThreadTable(id); err == nil && table != nil {
			count = table.ThreadCount()
		}
		out.Subsystems = append(out.Subsystems, subsystemStatus{
			Name:        name,
			State:       state.String(),
			ThreadCount: count,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

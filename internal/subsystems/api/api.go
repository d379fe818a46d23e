// Package api supplies the API subsystem: mounts the device's REST
// surface on the shared WebServer router, backed by the Database
// subsystem's query manager. Route handlers are intentionally thin —
// HTTP routing design itself is out of scope.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/httpserver"
)

func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("API")

	return &orchestrator.Subsystem{
		Name:         "API",
		Dependencies: []string{"WebServer", "Database"},
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
			sub := router.PathPrefix("/api/v1").Subrouter()

			sub.HandleFunc("/databases/{name}/query", func(w http.ResponseWriter, r *http.Request) {
				handleQuery(ctx, w, r)
			}).Methods(http.MethodPost)

			return true
		},
		Land: func() bool {
			return true
		},
	}
}

type queryRequest struct {
	SQL    string `json:"sql"`
	Params string `json:"params"`
	Tier   string `json:"tier"`
}

func handleQuery(ctx *apphost.Context, w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	params, err := dbqueue.ParseTypedParameters(req.Params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tier := tierFromString(req.Tier)

	queryID, err := ctx.DBQueue.SubmitQuery(r.Context(), name, tier, dbqueue.Request{SQL: req.SQL, Params: params}, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	outcome := ctx.DBQueue.AwaitResult(name, queryID, 30*time.Second)
	w.Header().Set("Content-Type", "application/json")
	if outcome.Err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": outcome.Err.Error()})
		return
	}
	_ = json.NewEncoder(w).Encode(outcome.Result)
}

func tierFromString(s string) dbqueue.QueueType {
	switch s {
	case "slow":
		return dbqueue.Slow
	case "fast":
		return dbqueue.Fast
	case "cache":
		return dbqueue.Cache
	default:
		return dbqueue.Medium
	}
}

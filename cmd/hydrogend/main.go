package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/config"
	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/api"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/database"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/httpserver"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/logging"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/mailrelay"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/mdnsclient"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/mdnsserver"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/network"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/notify"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/oidc"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/payload"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/print"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/resources"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/swagger"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/terminal"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/threads"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/websocket"
	"github.com/hydrogen-daemon/hydrogen/pkg/logger"
)

func main() {
	configFile := flag.String("config", "", "Path to a .env configuration file (defaults to config/<env>.env)")
	landTimeout := flag.Duration("land-timeout", 30*time.Second, "Maximum time to wait for a clean shutdown")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	log := logger.New(logger.LoggingConfig{Level: cfg.LogLevel, Format: cfg.LogFormat})

	orch := orchestrator.New()

	dbManager := dbqueue.NewManager(dbqueue.ManagerConfig{
		RateLimitPerSecond: cfg.DBRateLimitPerSecond,
		RateBurst:          cfg.DBRateBurst,
		DefaultResultTTL:   cfg.DBResultTTL,
	}, log.Logger)

	var resultCache dbqueue.ResultCache
	if cfg.CacheQueueEnabled {
		resultCache = dbqueue.NewRedisResultCache(cfg.RedisAddr, cfg.DBResultTTL)
	}

	ctx := apphost.New(cfg, log.Logger, dbManager, resultCache, orch.Registry(), prometheus.NewRegistry())

	builders := []func(*apphost.Context) *orchestrator.Subsystem{
		logging.Build,
		network.Build,
		database.Build,
		payload.Build,
		threads.Build,
		resources.Build,
		httpserver.Build,
		websocket.Build,
		terminal.Build,
		mdnsserver.Build,
		mdnsclient.Build,
		api.Build,
		swagger.Build,
		print.Build,
		mailrelay.Build,
		notify.Build,
		oidc.Build,
	}

	for _, build := range builders {
		sub := build(ctx)
		if err := orch.AddSubsystem(sub); err != nil {
			log.Fatalf("register subsystem %s: %v", sub.Name, err)
		}
	}

	runLaunchLoop(orch, log.Logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("hydrogend received shutdown signal, landing subsystems")
	runLandingLoop(orch, log.Logger, *landTimeout)
}

// runLaunchLoop repeatedly runs launch cycles until a cycle admits
// nothing new: each cycle can only unblock subsystems whose
// dependencies became Running in the previous cycle.
func runLaunchLoop(orch *orchestrator.Orchestrator, log interface {
	Info(args ...interface{})
}) {
	for {
		batch, results := orch.RunLaunchCycle()
		if batch == nil || !batch.AnyReady || len(results) == 0 {
			return
		}
		progressed := false
		for _, r := range results {
			if r.Success && !r.Skipped {
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

func runLandingLoop(orch *orchestrator.Orchestrator, log interface {
	Info(args ...interface{})
}, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		orch.LandAll()
		close(done)
	}()

	select {
	case <-done:
		log.Info("hydrogend landed all subsystems cleanly")
	case <-time.After(timeout):
		log.Info("hydrogend landing timed out; exiting")
	}
}

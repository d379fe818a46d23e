// Package database supplies the Database subsystem: wires one Lead
// Queue Actor per configured database into the shared dbqueue.Manager
// and drives each through connect -> bootstrap -> migrate -> serving
// during Launch.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/config"
	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue/drivers"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

func driverFor(engine string) (dbqueue.Driver, error) {
	switch engine {
	case "postgres":
		return drivers.NewPostgres(), nil
	case "mysql":
		return drivers.NewMySQL(), nil
	case "sqlite":
		return drivers.NewSQLite(), nil
	case "db2":
		return drivers.NewDB2(), nil
	default:
		return nil, fmt.Errorf("unknown database engine %q", engine)
	}
}

// Build constructs the Database subsystem, deferring connection work to
// Launch so CheckReady stays a fast, non-blocking probe.
func Build(ctx *apphost.Context) *orchestrator.Subsystem {
	log := ctx.LoggerFor("Database")

	actors := make(map[string]*dbqueue.LeadQueueActor)
	maintenance := cron.New()

	return &orchestrator.Subsystem{
		Name:         "Database",
		Dependencies: []string{"Logging"},
		CheckReady: func() orchestrator.ReadinessVerdict {
			if len(ctx.Config.Databases) == 0 {
				return orchestrator.ReadinessVerdict{Ready: true, Messages: []string{"no databases configured"}}
			}
			return orchestrator.ReadinessVerdict{Ready: true}
		},
		Launch: func() bool {
			allOK := true
			for _, dbCfg := range ctx.Config.Databases {
				actor, err := launchDatabase(ctx, dbCfg, log)
				if err != nil {
					log.WithError(err).WithField("database", dbCfg.Name).Error("failed to bring up database")
					allOK = false
					continue
				}
				actors[dbCfg.Name] = actor
				ctx.DBQueue.RegisterDatabase(dbCfg.Name, actor)
			}
			ctx.Put("database.actors", actors)

			if _, err := maintenance.AddFunc("@every 1m", func() { sweepExpiredResults(ctx, log) }); err != nil {
				log.WithError(err).Warn("could not schedule pending-result cleanup sweep")
			} else {
				maintenance.Start()
			}
			return allOK
		},
		Land: func() bool {
			stopCtx := maintenance.Stop()
			<-stopCtx.Done()
			background := ctx.Background()
			ctx.DBQueue.Shutdown(background)
			log.Info("database subsystem landed")
			return true
		},
	}
}

// sweepExpiredResults evicts stale PendingResultRegistry entries across
// every registered database, run on a schedule so a client that never
// calls AwaitResult doesn't leak a slot forever.
func sweepExpiredResults(ctx *apphost.Context, log *logrus.Entry) {
	pending := ctx.DBQueue.Pending()
	total := 0
	for _, name := range ctx.DBQueue.DatabaseNames() {
		total += pending.CleanupExpired(name)
	}
	if total > 0 {
		log.WithField("evicted", total).Debug("pending-result cleanup sweep")
	}
}

func launchDatabase(ctx *apphost.Context, dbCfg config.DatabaseConfig, log *logrus.Entry) (*dbqueue.LeadQueueActor, error) {
	d, err := driverFor(dbCfg.Engine)
	if err != nil {
		return nil, err
	}

	actor := dbqueue.NewLeadQueueActor(dbCfg.Name, d, dbCfg.DSN, ctx.DBQueue.Pending(), ctx.Cache, ctx.Log)

	connectCtx, cancel := context.WithTimeout(ctx.Background(), 10*time.Second)
	defer cancel()

	if err := actor.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := actor.Bootstrap(connectCtx); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	if err := runMigrations(connectCtx, actor); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	actor.EnterServing(dbqueue.ChildSpec{
		Slow:         ctx.Config.SlowQueueWorkers,
		Medium:       ctx.Config.MediumQueueWorkers,
		Fast:         ctx.Config.FastQueueWorkers,
		CacheEnabled: ctx.Config.CacheQueueEnabled,
	})

	style := dbqueue.StyleForEngine(d.Engine())
	for _, child := range actor.Children() {
		go func(c *dbqueue.ChildQueue) {
			if err := c.Run(ctx.Background(), dbCfg.DSN, style); err != nil {
				log.WithError(err).WithField("database", dbCfg.Name).Warn("child queue stopped")
			}
		}(child)
	}

	log.WithField("database", dbCfg.Name).WithField("engine", dbCfg.Engine).Info("database serving")
	return actor, nil
}

// runMigrations drives the watermark decision table to completion
// (ActionNone). The load/apply callbacks are no-ops here: a concrete
// deployment supplies a golang-migrate source via migrate.Migrate and
// these hooks call its Steps(1); absent a configured migration source,
// the watermarks start equal and the loop exits immediately.
func runMigrations(ctx context.Context, actor *dbqueue.LeadQueueActor) error {
	var m *migrate.Migrate // nil: no migration source configured by default

	load := func(ctx context.Context) error {
		if m == nil {
			return nil
		}
		err := m.Steps(1)
		if err != nil && err != migrate.ErrNoChange {
			return err
		}
		return nil
	}
	apply := load

	for {
		action, err := actor.RunMigrationStep(ctx, load, apply)
		if err != nil {
			return err
		}
		if action == dbqueue.ActionNone {
			return nil
		}
	}
}

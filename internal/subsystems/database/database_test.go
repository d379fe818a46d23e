package database

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/config"
	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue/drivers"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

func TestDriverForKnownEngines(t *testing.T) {
	cases := map[string]dbqueue.Engine{
		"postgres": dbqueue.EnginePostgres,
		"mysql":    dbqueue.EngineMySQL,
		"sqlite":   dbqueue.EngineSQLite,
		"db2":      dbqueue.EngineDB2,
	}
	for engine, want := range cases {
		d, err := driverFor(engine)
		require.NoError(t, err)
		require.Equal(t, want, d.Engine())
	}
}

func TestDriverForUnknownEngineFails(t *testing.T) {
	_, err := driverFor("oracle")
	require.Error(t, err)
}

func TestBuildCheckReadyPassesWithNoDatabasesConfigured(t *testing.T) {
	ctx := apphost.New(&config.Config{}, logrus.New(), dbqueue.NewManager(dbqueue.ManagerConfig{}, logrus.New()), nil, orchestrator.New().Registry(), nil)
	sub := Build(ctx)

	verdict := sub.CheckReady()
	require.True(t, verdict.Ready)
	require.Contains(t, verdict.Messages, "no databases configured")
}

func TestBuildLaunchWithNoDatabasesConfiguredSucceeds(t *testing.T) {
	ctx := apphost.New(&config.Config{}, logrus.New(), dbqueue.NewManager(dbqueue.ManagerConfig{}, logrus.New()), nil, orchestrator.New().Registry(), nil)
	sub := Build(ctx)

	require.True(t, sub.Launch())
	require.True(t, sub.Land())
}

func TestDB2DriverConnectFails(t *testing.T) {
	d := drivers.NewDB2()
	_, err := d.Connect(nil, "dsn", "jobs")
	require.Error(t, err)
}

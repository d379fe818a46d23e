package print

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue"
	"github.com/hydrogen-daemon/hydrogen/internal/dbqueue/drivers"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func newJobsManager(t *testing.T) *dbqueue.Manager {
	t.Helper()
	log := logrus.New()
	log.SetOutput(discardWriter{})

	driver := drivers.NewSQLite()
	m := dbqueue.NewManager(dbqueue.ManagerConfig{}, log)
	pending := m.Pending()
	dsn := "file::memory:?cache=shared"
	actor := dbqueue.NewLeadQueueActor(JobsDatabase, driver, dsn, pending, nil, log)
	require.NoError(t, actor.Connect(context.Background()))
	require.NoError(t, actor.Bootstrap(context.Background()))

	_, err := actor.Dispatch(context.Background(), dbqueue.Request{
		SQL:        "CREATE TABLE IF NOT EXISTS print_jobs (job_id TEXT, payload TEXT)",
		Designator: JobsDatabase,
	}, dbqueue.StyleQuestion)
	require.NoError(t, err)

	actor.EnterServing(dbqueue.ChildSpec{Fast: 1})
	style := dbqueue.StyleForEngine(driver.Engine())
	for _, child := range actor.Children() {
		go child.Run(context.Background(), dsn, style)
	}
	t.Cleanup(func() {
		for _, child := range actor.Children() {
			child.RequestShutdown()
		}
	})

	m.RegisterDatabase(JobsDatabase, actor)
	return m
}

func TestBuildCheckReadyAndLaunch(t *testing.T) {
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), nil)
	sub := Build(ctx)
	require.True(t, sub.CheckReady().Ready)
	require.True(t, sub.Launch())
	require.True(t, sub.Land())
}

func TestEnqueueJobPersistsAgainstJobsDatabase(t *testing.T) {
	mgr := newJobsManager(t)
	ctx := apphost.New(nil, logrus.New(), mgr, nil, orchestrator.NewRegistry(), nil)

	queryID, err := EnqueueJob(ctx, "job-1", "G1 X0 Y0")
	require.NoError(t, err)
	require.NotEmpty(t, queryID)

	outcome := mgr.AwaitResult(JobsDatabase, queryID, 5*time.Second)
	require.NoError(t, outcome.Err)
	require.True(t, outcome.Result.Success)
}

func TestEnqueueJobFailsWithoutJobsDatabaseRegistered(t *testing.T) {
	mgr := dbqueue.NewManager(dbqueue.ManagerConfig{}, logrus.New())
	ctx := apphost.New(nil, logrus.New(), mgr, nil, orchestrator.NewRegistry(), nil)

	_, err := EnqueueJob(ctx, "job-1", "G1 X0 Y0")
	require.ErrorIs(t, err, dbqueue.ErrUnknownDatabase)
}

func TestEnqueueJobTruncatesOversizedPayload(t *testing.T) {
	mgr := newJobsManager(t)
	ctx := apphost.New(nil, logrus.New(), mgr, nil, orchestrator.NewRegistry(), nil)

	oversized := make([]byte, postProcessorBufferSize+100)
	for i := range oversized {
		oversized[i] = 'x'
	}

	queryID, err := EnqueueJob(ctx, "job-2", string(oversized))
	require.NoError(t, err)

	outcome := mgr.AwaitResult(JobsDatabase, queryID, 5*time.Second)
	require.NoError(t, outcome.Err)
	require.True(t, outcome.Result.Success)
}

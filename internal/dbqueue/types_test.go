package dbqueue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetermineMigrationActionNoneWhenAligned(t *testing.T) {
	require.Equal(t, ActionNone, DetermineMigrationAction(Watermarks{Available: 3, Loaded: 3, Applied: 3}))
}

func TestDetermineMigrationActionLoadWhenAvailableAhead(t *testing.T) {
	require.Equal(t, ActionLoad, DetermineMigrationAction(Watermarks{Available: 5, Loaded: 3, Applied: 3}))
}

func TestDetermineMigrationActionApplyWhenLoadedAheadOfApplied(t *testing.T) {
	require.Equal(t, ActionApply, DetermineMigrationAction(Watermarks{Available: 5, Loaded: 5, Applied: 3}))
}

func TestDetermineMigrationActionNoneWhenPathological(t *testing.T) {
	require.Equal(t, ActionNone, DetermineMigrationAction(Watermarks{Available: 1, Loaded: 3, Applied: 3}))
}

func TestQueueTypeString(t *testing.T) {
	require.Equal(t, "Lead", Lead.String())
	require.Equal(t, "Slow", Slow.String())
	require.Equal(t, "Medium", Medium.String())
	require.Equal(t, "Fast", Fast.String())
	require.Equal(t, "Cache", Cache.String())
}

func TestNewDatabaseQueueForcesLeadQueueNumberZero(t *testing.T) {
	q := NewDatabaseQueue("jobs", Lead, 7, "jobs")
	require.Equal(t, 0, q.QueueNumber)
	require.True(t, q.IsLeadQueue)
}

func TestDatabaseQueueShutdownFlag(t *testing.T) {
	q := NewDatabaseQueue("jobs", Fast, 1, "jobs")
	require.False(t, q.ShutdownRequested())
	q.RequestShutdown()
	require.True(t, q.ShutdownRequested())
}

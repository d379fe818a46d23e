package dbqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCacheKeyIsDeterministic(t *testing.T) {
	params := ParameterList{{Name: "id", Type: "INTEGER", Value: int64(3)}}
	a := cacheKey("jobs", "SELECT * FROM jobs WHERE id = $1", params)
	b := cacheKey("jobs", "SELECT * FROM jobs WHERE id = $1", params)
	require.Equal(t, a, b)
}

func TestCacheKeyDiffersOnDesignatorSQLOrParams(t *testing.T) {
	base := cacheKey("jobs", "SELECT 1", ParameterList{{Name: "id", Type: "INTEGER", Value: int64(1)}})

	require.NotEqual(t, base, cacheKey("printers", "SELECT 1", ParameterList{{Name: "id", Type: "INTEGER", Value: int64(1)}}))
	require.NotEqual(t, base, cacheKey("jobs", "SELECT 2", ParameterList{{Name: "id", Type: "INTEGER", Value: int64(1)}}))
	require.NotEqual(t, base, cacheKey("jobs", "SELECT 1", ParameterList{{Name: "id", Type: "INTEGER", Value: int64(2)}}))
}

func TestCacheKeyHasStablePrefix(t *testing.T) {
	key := cacheKey("jobs", "SELECT 1", nil)
	require.Contains(t, key, "hydrogend:dbqueue:cache:")
}

func TestNewRedisResultCacheDefaultsTTL(t *testing.T) {
	c := NewRedisResultCache("localhost:6379", 0)
	require.Equal(t, 10*time.Second, c.ttl)
}

func TestNewRedisResultCacheKeepsPositiveTTL(t *testing.T) {
	c := NewRedisResultCache("localhost:6379", 5*time.Minute)
	require.Equal(t, 5*time.Minute, c.ttl)
}

func TestFmtParamValueRoundTripsJSONScalars(t *testing.T) {
	require.Equal(t, `"printer"`, fmtParamValue("printer"))
	require.Equal(t, "3", fmtParamValue(3))
	require.Equal(t, "true", fmtParamValue(true))
}

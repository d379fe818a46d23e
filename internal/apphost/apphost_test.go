package apphost

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsMetricsRegistry(t *testing.T) {
	ctx := New(nil, logrus.New(), nil, nil, nil, nil)
	require.NotNil(t, ctx.Metrics)
}

func TestNewKeepsSuppliedMetricsRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	ctx := New(nil, logrus.New(), nil, nil, nil, reg)
	require.Same(t, reg, ctx.Metrics)
}

func TestPutGetRoundTrips(t *testing.T) {
	ctx := New(nil, logrus.New(), nil, nil, nil, nil)

	_, ok := ctx.Get("router")
	require.False(t, ok)

	ctx.Put("router", 42)
	v, ok := ctx.Get("router")
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestLoggerForScopesSubsystemField(t *testing.T) {
	log := logrus.New()
	ctx := New(nil, log, nil, nil, nil, nil)
	entry := ctx.LoggerFor("Print")
	require.Equal(t, "Print", entry.Data["subsystem"])
}

func TestBackgroundIsNonNil(t *testing.T) {
	ctx := New(nil, logrus.New(), nil, nil, nil, nil)
	require.NotNil(t, ctx.Background())
}

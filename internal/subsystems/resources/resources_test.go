package resources

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

func TestBuildLaunchRegistersHostGauges(t *testing.T) {
	registry := prometheus.NewRegistry()
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), registry)
	sub := Build(ctx)

	require.True(t, sub.Launch())
	t.Cleanup(func() { sub.Land() })

	families, err := registry.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.Contains(t, names, "hydrogen_host_cpu_percent")
	require.Contains(t, names, "hydrogen_host_memory_percent")
}

func TestBuildLaunchIsSafeToCallTwice(t *testing.T) {
	registry := prometheus.NewRegistry()
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), registry)
	sub1 := Build(ctx)
	sub2 := Build(ctx)

	require.True(t, sub1.Launch())
	require.True(t, sub2.Launch(), "a duplicate-registration error must be logged, not fatal")
	t.Cleanup(func() { sub1.Land(); sub2.Land() })
}

func TestBuildLandStopsSamplingPromptly(t *testing.T) {
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), prometheus.NewRegistry())
	sub := Build(ctx)
	require.True(t, sub.Launch())

	done := make(chan bool, 1)
	go func() { done <- sub.Land() }()

	select {
	case ok := <-done:
		require.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Land did not return promptly")
	}
}

package network

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
)

func TestBuildCheckReadyFindsLoopbackInterface(t *testing.T) {
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), nil)
	require.True(t, Build(ctx).CheckReady().Ready)
}

func TestBuildLaunchPublishesBindAddress(t *testing.T) {
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), nil)
	sub := Build(ctx)
	require.True(t, sub.Launch())

	v, ok := ctx.Get(BindAddress)
	require.True(t, ok)
	require.Equal(t, "0.0.0.0", v)
}

func TestResolveBindAddressUsesPublishedAddress(t *testing.T) {
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), nil)
	require.True(t, Build(ctx).Launch())

	require.Equal(t, "0.0.0.0:8080", ResolveBindAddress(ctx, 8080))
}

func TestResolveBindAddressFallsBackWithoutNetworkLaunch(t *testing.T) {
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), nil)
	require.Equal(t, "0.0.0.0:9090", ResolveBindAddress(ctx, 9090))
}

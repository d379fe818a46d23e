package notify

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/hydrogen-daemon/hydrogen/internal/apphost"
	"github.com/hydrogen-daemon/hydrogen/internal/orchestrator"
	"github.com/hydrogen-daemon/hydrogen/internal/subsystems/mailrelay"
)

func TestBuildLaunchFailsWithoutMailRelay(t *testing.T) {
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), nil)
	sub := Build(ctx)
	require.False(t, sub.Launch())
}

func TestBuildLaunchSucceedsOnceMailRelayIsPublished(t *testing.T) {
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), nil)
	require.True(t, mailrelay.Build(ctx).Launch())

	sub := Build(ctx)
	require.True(t, sub.Launch())

	v, ok := ctx.Get("notify.relay")
	require.True(t, ok)
	require.IsType(t, &mailrelay.Relay{}, v)
}

func TestNotifyWithoutRelayIsANoop(t *testing.T) {
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), nil)
	require.NoError(t, Notify(ctx, "ops@example.com", "subject", "body"))
}

func TestNotifySendsThroughConfiguredRelay(t *testing.T) {
	ctx := apphost.New(nil, logrus.New(), nil, nil, orchestrator.NewRegistry(), nil)
	ctx.Put(mailrelay.RelayKey, &mailrelay.Relay{Host: "127.0.0.1:1", From: "hydrogen@localhost"})

	err := Notify(ctx, "ops@example.com", "job complete", "print finished")
	require.Error(t, err, "the unreachable relay host must surface a send failure")
}

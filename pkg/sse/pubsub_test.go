package sse

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisBridge(t *testing.T) {
	if testing.Short() {
		t.Skip("starts a Redis container")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	// two instances sharing one channel
	hubA, hubB := NewHub(), NewHub()
	bridgeA := NewRedisBridge(client, "test:sse", hubA)
	bridgeB := NewRedisBridge(client, "test:sse", hubB)
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = bridgeA.Run(runCtx) }()
	go func() { _ = bridgeB.Run(runCtx) }()

	events, unsub := hubB.Subscribe(42)
	defer unsub()

	// wait for both subscriptions before publishing
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, "test:sse").Result()
		return err == nil && n["test:sse"] == 2
	}, 10*time.Second, 50*time.Millisecond)

	bridgeA.Publish(42, Event{Type: "notification", Data: map[string]int{"count": 3}})

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Type)
		raw, ok := ev.Data.(json.RawMessage)
		require.True(t, ok)
		assert.JSONEq(t, `{"count":3}`, string(raw))
	case <-time.After(10 * time.Second):
		t.Fatal("event never crossed the bridge")
	}

	t.Run("delivers locally when not relaying", func(t *testing.T) {
		hubC := NewHub()
		bridgeC := NewRedisBridge(client, "test:sse", hubC)
		failed, cancelRun := context.WithCancel(ctx)
		cancelRun()
		require.Error(t, bridgeC.Run(failed))
		require.False(t, bridgeC.Relaying())

		local, unsubC := hubC.Subscribe(7)
		defer unsubC()
		remote, unsubB := hubB.Subscribe(7)
		defer unsubB()

		bridgeC.Publish(7, Event{Type: "notification", Data: 1})

		for name, ch := range map[string]<-chan Event{"local": local, "remote": remote} {
			select {
			case ev := <-ch:
				assert.Equal(t, "notification", ev.Type, name)
			case <-time.After(10 * time.Second):
				t.Fatalf("%s stream got nothing", name)
			}
		}
	})
}

func TestRedisBridgeWithoutRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })

	hub := NewHub()
	bridge := NewRedisBridge(client, "", hub)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.Error(t, bridge.Run(ctx))
	assert.False(t, bridge.Relaying())

	events, unsub := hub.Subscribe(1)
	defer unsub()
	bridge.Publish(1, Event{Type: "notification", Data: 2})

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Type)
		assert.Equal(t, 2, ev.Data)
	case <-time.After(5 * time.Second):
		t.Fatal("event was lost")
	}
}

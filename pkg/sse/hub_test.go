package sse

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublish(t *testing.T) {
	h := NewHub()
	a1, unsubA1 := h.Subscribe(1)
	a2, unsubA2 := h.Subscribe(1)
	b, unsubB := h.Subscribe(2)
	defer unsubA2()
	defer unsubB()

	h.Publish(1, Event{Type: "notification", Data: 3})

	assert.Equal(t, Event{Type: "notification", Data: 3}, <-a1)
	assert.Equal(t, Event{Type: "notification", Data: 3}, <-a2)
	select {
	case ev := <-b:
		t.Fatalf("user 2 received %v", ev)
	default:
	}

	unsubA1()
	unsubA1()
	_, open := <-a1
	assert.False(t, open, "unsubscribe closes the channel")
	assert.Equal(t, 1, h.Subscribers(1))
}

func TestHubDropsForSlowConsumers(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe(1)
	defer unsub()

	for i := 0; i < 100; i++ {
		h.Publish(1, Event{Type: "tick", Data: i})
	}
	assert.Len(t, ch, cap(ch))
}

func TestHubConcurrentUnsubscribe(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, unsub := h.Subscribe(7)
			unsub()
		}()
		go func() {
			defer wg.Done()
			h.Publish(7, Event{Type: "x"})
		}()
	}
	wg.Wait()
	assert.Zero(t, h.Subscribers(7))
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEvent(&buf, Event{Type: "notification", Data: map[string]int{"n": 2}}))
	assert.Equal(t, "event: notification\ndata: {\"n\":2}\n\n", buf.String())
}

func TestServe(t *testing.T) {
	events := make(chan Event, 1)
	events <- Event{Type: "notification", Data: 1}
	close(events)

	rec := httptest.NewRecorder()
	require.NoError(t, Serve(context.Background(), rec, events, time.Minute))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, ": ok\n\n"))
	assert.Contains(t, body, "event: notification\ndata: 1\n\n")
}

func TestServeStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	assert.NoError(t, Serve(ctx, rec, make(chan Event), time.Minute))
}

package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	a := &Client{hub: hub, send: make(chan []byte, 8), remoteAddr: "a"}
	b := &Client{hub: hub, send: make(chan []byte, 8), remoteAddr: "b"}
	hub.register <- a
	hub.register <- b

	hub.Broadcast([]byte(`{"event_type":"ORDER_CREATED"}`))

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			require.JSONEq(t, `{"event_type":"ORDER_CREATED"}`, string(msg))
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive broadcast", c.remoteAddr)
		}
	}
}

func TestHub_UnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := &Client{hub: hub, send: make(chan []byte, 8), remoteAddr: "a"}
	hub.register <- c
	hub.unregister <- c

	select {
	case _, ok := <-c.send:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}

	// 注销后的广播不会投递给它
	hub.Broadcast([]byte(`{}`))
	require.Zero(t, hub.ClientCount())
}

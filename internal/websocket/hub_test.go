package websocket

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id string) *Client {
	return NewClient(id, nil, Options{SendBuffer: 8})
}

func drain(c *Client) []string {
	var out []string
	for {
		select {
		case msg, ok := <-c.outbox():
			if !ok {
				return out
			}
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestHub_JoinAndBroadcast(t *testing.T) {
	h := NewHub()
	a, b, c := newTestClient("a"), newTestClient("b"), newTestClient("c")
	for _, cl := range []*Client{a, b, c} {
		h.Register(cl)
	}

	require.NoError(t, h.Join("a", "lobby"))
	require.NoError(t, h.Join("b", "lobby"))
	require.NoError(t, h.Join("c", "kitchen"))

	n := h.BroadcastToRoom("lobby", []byte("hello lobby"))
	assert.Equal(t, 2, n)

	assert.Equal(t, []string{"hello lobby"}, drain(a))
	assert.Equal(t, []string{"hello lobby"}, drain(b))
	assert.Empty(t, drain(c), "members of other rooms receive nothing")
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	h := NewHub()
	a := newTestClient("a")
	h.Register(a)

	require.NoError(t, h.Join("a", "lobby"))
	require.NoError(t, h.Join("a", "lobby"))

	assert.Equal(t, []string{"a"}, h.Members("lobby"))
	assert.Equal(t, 1, h.BroadcastToRoom("lobby", []byte("once")))
	assert.Equal(t, []string{"once"}, drain(a))
}

func TestHub_JoinUnknownClient(t *testing.T) {
	h := NewHub()
	assert.ErrorIs(t, h.Join("ghost", "lobby"), ErrUnknownClient)
	assert.Empty(t, h.Members("lobby"))
}

func TestHub_MultipleRooms(t *testing.T) {
	h := NewHub()
	a := newTestClient("a")
	h.Register(a)

	require.NoError(t, h.Join("a", "r2"))
	require.NoError(t, h.Join("a", "r1"))
	assert.Equal(t, []string{"r1", "r2"}, h.RoomsOf("a"))
	assert.True(t, h.IsMember("a", "r1"))

	assert.True(t, h.Leave("a", "r1"))
	assert.False(t, h.Leave("a", "r1"))
	assert.Equal(t, []string{"r2"}, h.RoomsOf("a"))
	assert.Empty(t, h.Members("r1"))
}

func TestHub_UnregisterRemovesAllMemberships(t *testing.T) {
	h := NewHub()
	a, b := newTestClient("a"), newTestClient("b")
	h.Register(a)
	h.Register(b)
	require.NoError(t, h.Join("a", "r1"))
	require.NoError(t, h.Join("a", "r2"))
	require.NoError(t, h.Join("b", "r1"))

	left := h.Unregister(a)
	assert.Equal(t, []string{"r1", "r2"}, left)
	assert.Equal(t, []string{"b"}, h.Members("r1"))
	assert.Empty(t, h.Members("r2"))
	assert.Empty(t, h.RoomsOf("a"))
	assert.Equal(t, 1, h.ClientCount())

	// later broadcasts reach only remaining members and do not fail
	assert.Equal(t, 1, h.BroadcastToRoom("r1", []byte("after")))
	assert.Equal(t, 0, h.BroadcastToRoom("r2", []byte("after")))
	assert.False(t, a.SendMessage([]byte("closed")))

	assert.Nil(t, h.Unregister(a), "second unregister is a no-op")
}

func TestHub_UnregisterIgnoresStaleClientWithSameID(t *testing.T) {
	h := NewHub()
	old := newTestClient("a")
	h.Register(old)
	fresh := newTestClient("a")
	h.Register(fresh)

	assert.Nil(t, h.Unregister(old))
	assert.Equal(t, 1, h.ClientCount())
	assert.True(t, h.SendTo("a", []byte("x")))
}

func TestHub_SendTo(t *testing.T) {
	h := NewHub()
	a := newTestClient("a")
	h.Register(a)

	assert.True(t, h.SendTo("a", []byte("direct")))
	assert.False(t, h.SendTo("nobody", []byte("direct")))
	assert.Equal(t, []string{"direct"}, drain(a))
}

func TestClient_SendMessageDropsWhenFull(t *testing.T) {
	c := NewClient("slow", nil, Options{SendBuffer: 1})
	assert.True(t, c.SendMessage([]byte("1")))
	assert.False(t, c.SendMessage([]byte("2")))
	assert.Equal(t, []string{"1"}, drain(c))
}

func TestClient_EmitEncodesEnvelope(t *testing.T) {
	c := newTestClient("e")
	require.NoError(t, c.Emit("joined-room", map[string]string{"chatRoomId": "r1"}))

	msgs := drain(c)
	require.Len(t, msgs, 1)
	assert.JSONEq(t, `{"event":"joined-room","data":{"chatRoomId":"r1"}}`, msgs[0])

	c.Close()
	assert.ErrorIs(t, c.Emit("x", nil), ErrNotDelivered)
}

func TestHub_ConcurrentAccess(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := newTestClient(fmt.Sprintf("c%d", i))
			h.Register(c)
			_ = h.Join(c.ID(), "shared")
			h.BroadcastToRoom("shared", []byte("tick"))
			if i%2 == 0 {
				h.Unregister(c)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("hub operations deadlocked")
	}
	assert.Len(t, h.Members("shared"), 10)
}

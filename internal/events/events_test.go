package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/models"
)

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(context.Background(), Event{
		Type:        TokenGraduated,
		MintAddress: "Mint111",
		Status:      models.GraduationGraduated,
		Previous:    models.GraduationEligible,
		Timestamp:   time.Unix(1700000000, 0).UTC(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, TokenGraduated, got.Type)
	assert.Equal(t, "Mint111", got.MintAddress)
	assert.Equal(t, models.GraduationEligible, got.Previous)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	hub := NewHub([]string{"https://app.example"})
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil)
	slow := &client{send: make(chan []byte)}
	hub.clients[slow] = struct{}{}

	hub.Publish(context.Background(), Event{Type: TokenUpdated, MintAddress: "m"})

	assert.Equal(t, 0, hub.Clients())
	_, open := <-slow.send
	assert.False(t, open)
}

type fakeQueue struct {
	messages []interface{}
	err      error
}

func (f *fakeQueue) Publish(_ context.Context, message interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

func TestQueuePublisher(t *testing.T) {
	q := &fakeQueue{}
	p := NewQueuePublisher(q)
	p.Publish(context.Background(), Event{Type: TokenCreated, MintAddress: "m"})
	require.Len(t, q.messages, 1)
	assert.Equal(t, TokenCreated, q.messages[0].(Event).Type)

	// A broker failure is swallowed.
	q.err = errors.New("channel closed")
	p.Publish(context.Background(), Event{Type: TokenUpdated, MintAddress: "m"})
	assert.Len(t, q.messages, 1)
}

func TestDecode(t *testing.T) {
	e, err := Decode([]byte(`{"type":"token.created","mint_address":"abc","timestamp":"2024-01-01T00:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, TokenCreated, e.Type)
	assert.Equal(t, "abc", e.MintAddress)

	_, err = Decode([]byte(`{"mint_address":"abc"}`))
	assert.Error(t, err)
	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestFanoutAndRecorder(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Fanout{a, nil, b, Nop{}}.Publish(context.Background(), Event{Type: TokenVerified})
	assert.Equal(t, []Type{TokenVerified}, a.Types())
	assert.Equal(t, []Type{TokenVerified}, b.Types())
}

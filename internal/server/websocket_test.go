package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id string) *client {
	return &client{id: id, send: make(chan []byte, 4), done: make(chan struct{})}
}

func pending(c *client) []string {
	var events []string
	for {
		select {
		case data := <-c.send:
			events = append(events, string(data))
		default:
			return events
		}
	}
}

func TestHubToRoomExceptSkipsSender(t *testing.T) {
	h := newHub()
	artist, viewer := newTestClient("a"), newTestClient("b")
	h.Add("ROOM01", "artist", artist)
	h.Add("ROOM01", "viewer", viewer)

	h.ToRoomExcept("ROOM01", "artist", "drawing_updated", strokesEvent{ParticipantID: "artist"})
	assert.Empty(t, pending(artist))
	require.Len(t, pending(viewer), 1)

	h.ToRoom("ROOM01", "state", nil)
	assert.Len(t, pending(artist), 1)
	assert.Len(t, pending(viewer), 1)
}

func TestHubForgetReleasesDroppedParticipants(t *testing.T) {
	h := newHub()
	kept, dropped := newTestClient("a"), newTestClient("b")
	h.Add("ROOM01", "kept", kept)
	h.Add("ROOM01", "dropped", dropped)

	h.Forget("ROOM01", []string{"dropped"})

	h.mu.Lock()
	assert.NotContains(t, h.groups["ROOM01"], "dropped")
	assert.Contains(t, h.groups["ROOM01"], "kept")
	assert.NotContains(t, h.clients, "dropped")
	h.mu.Unlock()

	h.ToParticipant("ROOM01", "dropped", "state", nil)
	h.ToRoom("ROOM01", "state", nil)
	assert.Empty(t, pending(dropped))
	assert.Len(t, pending(kept), 1)
}

package game

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"sketchparty/internal/content"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	opts = append([]Option{WithClock(clockwork.NewFakeClock())}, opts...)
	g := NewRegistry(DefaultSettings(), content.Builtin(), opts...)
	t.Cleanup(g.Close)
	return g
}

func TestRegistryCreate(t *testing.T) {
	g := newTestRegistry(t)

	room, host, err := g.Create("Ada", ModeScoring, "c1")
	require.NoError(t, err)
	assert.IsType(t, &ScoringRoom{}, room)
	assert.Equal(t, host.ID, room.HostID())
	assert.Equal(t, "Ada", host.Name)
	assert.True(t, host.Connected)

	social, _, err := g.Create("Bo", ModeSocial, "c2")
	require.NoError(t, err)
	assert.IsType(t, &SocialRoom{}, social)
	assert.Equal(t, 2, g.Len())

	found, ok := g.RoomOf(host.ID)
	require.True(t, ok)
	assert.Equal(t, room.Code(), found.Code())
}

func TestRegistryCodeCollisionRetries(t *testing.T) {
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	next := 0
	g := newTestRegistry(t, WithCodeGenerator(func() string {
		code := codes[next%len(codes)]
		next++
		return code
	}))

	first, _, err := g.Create("a", ModeScoring, "")
	require.NoError(t, err)
	second, _, err := g.Create("b", ModeScoring, "")
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.Code())
	assert.Equal(t, "BBBBBB", second.Code())
}

func TestRegistryCodeCollisionGivesUp(t *testing.T) {
	g := newTestRegistry(t, WithCodeGenerator(func() string { return "SAME01" }))
	_, _, err := g.Create("a", ModeScoring, "")
	require.NoError(t, err)
	_, _, err = g.Create("b", ModeScoring, "")
	assert.Error(t, err)
	assert.Equal(t, 1, g.Len())
}

func TestRegistryJoin(t *testing.T) {
	g := newTestRegistry(t)
	room, _, err := g.Create("host", ModeScoring, "c0")
	require.NoError(t, err)

	_, _, _, err = g.Join("NOPE00", "x", "", "c1")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, guest, reconnected, err := g.Join(room.Code(), "guest", "not-a-member", "c1")
	require.NoError(t, err)
	assert.False(t, reconnected)
	assert.NotEqual(t, "not-a-member", guest.ID)

	for i := 2; i < DefaultSettings().MaxParticipants; i++ {
		_, _, _, err = g.Join(room.Code(), fmt.Sprintf("p%d", i), "", fmt.Sprintf("c%d", i))
		require.NoError(t, err)
	}
	_, _, _, err = g.Join(room.Code(), "overflow", "", "cx")
	assert.ErrorIs(t, err, ErrRoomFull)

	_, _, err = g.Disconnect(guest.ID, "c1")
	require.NoError(t, err)
	_, back, reconnected, err := g.Join(room.Code(), "guest again", guest.ID, "c1b")
	require.NoError(t, err, "reconnect succeeds even when the room is full")
	assert.True(t, reconnected)
	assert.Equal(t, guest.ID, back.ID)
	assert.Equal(t, "c1b", back.ConnID)
}

func TestRegistryDisconnectDeletesEmptyRoom(t *testing.T) {
	var removed []string
	g := newTestRegistry(t, WithRemoveHook(func(code string) { removed = append(removed, code) }))
	room, host, err := g.Create("host", ModeScoring, "c0")
	require.NoError(t, err)
	_, guest, _, err := g.Join(room.Code(), "guest", "", "c1")
	require.NoError(t, err)

	_, gone, err := g.Disconnect(host.ID, "stale")
	assert.ErrorIs(t, err, ErrInvalidIntent)
	assert.False(t, gone)

	_, gone, err = g.Disconnect(host.ID, "c0")
	require.NoError(t, err)
	assert.False(t, gone)

	_, gone, err = g.Disconnect(guest.ID, "c1")
	require.NoError(t, err)
	assert.True(t, gone)
	assert.Equal(t, []string{room.Code()}, removed)
	assert.Zero(t, g.Len())

	_, ok := g.RoomOf(guest.ID)
	assert.False(t, ok)
	_, _, err = g.Disconnect(guest.ID, "c1")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistrySweepIsIdempotent(t *testing.T) {
	g := newTestRegistry(t)
	abandoned, host, err := g.Create("host", ModeScoring, "c0")
	require.NoError(t, err)
	live, _, err := g.Create("other", ModeSocial, "c1")
	require.NoError(t, err)

	require.True(t, abandoned.Disconnect(host.ID, ""))
	g.mu.Lock()
	g.participants["orphan"] = "GONE00"
	g.mu.Unlock()

	rooms, refs := g.Sweep()
	assert.Equal(t, 1, rooms)
	assert.Equal(t, 1, refs)
	_, ok := g.Lookup(abandoned.Code())
	assert.False(t, ok)
	_, ok = g.Lookup(live.Code())
	assert.True(t, ok)

	rooms, refs = g.Sweep()
	assert.Zero(t, rooms)
	assert.Zero(t, refs)
}

func TestRegistrySweepConcurrentWithDisconnect(t *testing.T) {
	g := newTestRegistry(t)
	var hosts []Participant
	for i := 0; i < 20; i++ {
		_, host, err := g.Create("host", ModeScoring, "c")
		require.NoError(t, err)
		hosts = append(hosts, host)
	}

	var wg sync.WaitGroup
	for _, host := range hosts {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _, _ = g.Disconnect(id, "c")
		}(host.ID)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		g.Sweep()
	}()
	wg.Wait()

	g.Sweep()
	assert.Zero(t, g.Len())
}

type brokenRoom struct{ Room }

func (brokenRoom) HasConnected() bool { panic("half torn down") }

func TestRegistrySweepSurvivesBrokenRoom(t *testing.T) {
	g := newTestRegistry(t)
	g.mu.Lock()
	g.rooms["BROKEN"] = brokenRoom{}
	g.mu.Unlock()

	assert.NotPanics(t, func() { g.Sweep() })
	assert.Zero(t, g.Len())
}

func TestRegistryRunSweepsOnTicker(t *testing.T) {
	clock := clockwork.NewFakeClock()
	g := NewRegistry(DefaultSettings(), content.Builtin(), WithClock(clock))
	room, host, err := g.Create("host", ModeScoring, "c0")
	require.NoError(t, err)
	require.True(t, room.Disconnect(host.ID, ""))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		g.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		clock.Advance(DefaultSettings().SweepInterval)
		return g.Len() == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestRegistryConvertToSocial(t *testing.T) {
	g := newTestRegistry(t)
	room, host, err := g.Create("host", ModeScoring, "c0")
	require.NoError(t, err)
	_, guest, _, err := g.Join(room.Code(), "guest", "", "c1")
	require.NoError(t, err)
	scoring := room.(*ScoringRoom)
	_, err = scoring.SetReady(guest.ID, true)
	require.NoError(t, err)

	_, err = g.ConvertToSocial(room.Code(), guest.ID)
	assert.ErrorIs(t, err, ErrNotHost)
	_, err = g.ConvertToSocial("NOPE00", host.ID)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	social, err := g.ConvertToSocial(room.Code(), host.ID)
	require.NoError(t, err)
	assert.Equal(t, room.Code(), social.Code())
	assert.Equal(t, host.ID, social.HostID())

	state := social.State()
	require.Len(t, state.Participants, 2)
	assert.Equal(t, host.ID, state.Participants[0].ID)
	assert.Equal(t, guest.ID, state.Participants[1].ID)
	assert.True(t, state.Participants[1].Ready)
	assert.Equal(t, "c1", state.Participants[1].ConnID)
	assert.NotEmpty(t, state.Participants[1].Color)

	current, ok := g.Lookup(room.Code())
	require.True(t, ok)
	assert.Same(t, social, current)
	found, ok := g.RoomOf(guest.ID)
	require.True(t, ok)
	assert.Equal(t, ModeSocial, found.Mode())

	_, err = scoring.Join("late", "late", "")
	assert.ErrorIs(t, err, ErrRoomNotFound, "old room is closed")

	_, err = g.ConvertToSocial(room.Code(), host.ID)
	assert.ErrorIs(t, err, ErrWrongPhase, "already social")
}

func TestRegistryConvertOnlyFromLobby(t *testing.T) {
	g := newTestRegistry(t)
	room, host, err := g.Create("host", ModeScoring, "c0")
	require.NoError(t, err)
	scoring := room.(*ScoringRoom)
	ids := []string{host.ID}
	for i := 0; i < 2; i++ {
		_, p, _, err := g.Join(room.Code(), "guest", "", "")
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	startScoringGame(t, scoring, ids)

	_, err = g.ConvertToSocial(room.Code(), host.ID)
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestRegistryReleasesParticipantsDroppedAtRoundBoundary(t *testing.T) {
	var mu sync.Mutex
	var forgotten []string
	g := newTestRegistry(t, WithForgetHook(func(code string, ids []string) {
		mu.Lock()
		defer mu.Unlock()
		forgotten = append(forgotten, ids...)
	}))
	room, host, err := g.Create("host", ModeScoring, "c0")
	require.NoError(t, err)
	scoring := room.(*ScoringRoom)
	ids := []string{host.ID}
	for i := 1; i < 4; i++ {
		_, p, _, err := g.Join(room.Code(), "guest", "", fmt.Sprintf("c%d", i))
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	startScoringGame(t, scoring, ids)
	_, err = scoring.EndRound(host.ID)
	require.NoError(t, err)

	_, gone, err := g.Disconnect(ids[3], "c3")
	require.NoError(t, err)
	require.False(t, gone)
	_, ok := g.RoomOf(ids[3])
	require.True(t, ok, "still listed until the next round starts")

	_, err = scoring.NextRound(context.Background(), host.ID)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := g.RoomOf(ids[3])
		return !ok
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{ids[3]}, forgotten)
	mu.Unlock()
	_, ok = g.RoomOf(ids[1])
	assert.True(t, ok)
}

func TestRegistrySweepDropsRefsTheRoomNoLongerLists(t *testing.T) {
	forgotten := make(map[string][]string)
	g := newTestRegistry(t, WithForgetHook(func(code string, ids []string) {
		forgotten[code] = append(forgotten[code], ids...)
	}))
	room, _, err := g.Create("host", ModeScoring, "c0")
	require.NoError(t, err)
	g.mu.Lock()
	g.participants["departed"] = room.Code()
	g.mu.Unlock()

	rooms, refs := g.Sweep()
	assert.Zero(t, rooms)
	assert.Equal(t, 1, refs)
	assert.Equal(t, []string{"departed"}, forgotten[room.Code()])
	_, ok := g.RoomOf("departed")
	assert.False(t, ok)
}

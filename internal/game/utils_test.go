package game

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code := NewRoomCode()
		require.Len(t, code, roomCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(roomCodeAlphabet, r), "unexpected symbol %q", r)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestPickColorWraps(t *testing.T) {
	assert.Equal(t, pickColor(0), pickColor(12))
	assert.NotEqual(t, pickColor(0), pickColor(1))
	assert.Equal(t, pickColor(0), pickColor(-3))
}

func TestSlidingWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	window := NewSlidingWindow(clock, 3, time.Second)

	for i := 0; i < 3; i++ {
		require.True(t, window.Allow())
		clock.Advance(100 * time.Millisecond)
	}
	assert.False(t, window.Allow(), "fourth event inside the window")

	// the first event was accepted at t=0 and ages out at t=1s.
	clock.Advance(700 * time.Millisecond)
	assert.True(t, window.Allow())
	assert.False(t, window.Allow())

	window.Reset()
	assert.True(t, window.Allow())
}

func TestSlidingWindowRejectionsDoNotConsume(t *testing.T) {
	clock := clockwork.NewFakeClock()
	window := NewSlidingWindow(clock, 1, time.Second)
	require.True(t, window.Allow())
	for i := 0; i < 10; i++ {
		clock.Advance(50 * time.Millisecond)
		assert.False(t, window.Allow())
	}
	clock.Advance(500 * time.Millisecond)
	assert.True(t, window.Allow())
}

func TestScoreSequence(t *testing.T) {
	seq := NewScoreSequence([]int{6, 5, 4}, 2)
	assert.Len(t, seq.Values(), 2)
	assert.Equal(t, 11, seq.RemainingSum())

	value, ok := seq.Take()
	require.True(t, ok)
	assert.Equal(t, 6, value)
	assert.Equal(t, []int{5}, seq.Remaining())

	value, ok = seq.Take()
	require.True(t, ok)
	assert.Equal(t, 5, value)

	_, ok = seq.Take()
	assert.False(t, ok)
	assert.Zero(t, seq.RemainingSum())
	assert.Equal(t, []int{6, 5}, seq.Values())
}

func TestScoreSequenceClamps(t *testing.T) {
	assert.Len(t, NewScoreSequence([]int{1, 2, 3}, 10).Values(), 3)
	assert.Empty(t, NewScoreSequence([]int{1, 2, 3}, -1).Values())

	global := []int{9, 8}
	seq := NewScoreSequence(global, 2)
	global[0] = 0
	value, _ := seq.Take()
	assert.Equal(t, 9, value, "sequence owns a copy")
}

func TestValidateStrokes(t *testing.T) {
	got := ValidateStrokes([]Stroke{
		{Type: StrokeStart, X: 0, Y: 1000, Size: 50, Tool: "pen", Color: "#ff00ff"},
		{Type: StrokeDraw, X: -1, Y: 10, Size: 5, Tool: "pen"},
		{Type: StrokeDraw, X: 10, Y: 10, Size: 51, Tool: "pen"},
		{Type: StrokeDraw, X: 10, Y: 10, Size: 5, Tool: "pen", Color: "red-ish"},
		{Type: StrokeFill, X: 999, Color: "#00ff00"},
		{Type: StrokeFill},
		{Type: StrokeEnd, X: 5},
		{Type: "wipe"},
	})
	require.Len(t, got, 3)
	assert.Equal(t, StrokeStart, got[0].Type)
	assert.Equal(t, Stroke{Type: StrokeFill, Tool: StrokeFill, Color: "#00ff00"}, got[1])
	assert.Equal(t, Stroke{Type: StrokeEnd}, got[2])
}

func TestStrokeKeepsZeroCoordinates(t *testing.T) {
	data, err := json.Marshal(Stroke{Type: StrokeStart, X: 0, Y: 10, Size: 4, Tool: "pen"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"x":0`)
	assert.Contains(t, string(data), `"y":10`)

	data, err = json.Marshal(Stroke{Type: StrokeDraw, X: 1000, Y: 0, Size: 4, Tool: "pen"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"y":0`)
}

func TestValidateStrokesDropsClientParticipant(t *testing.T) {
	got := ValidateStrokes([]Stroke{{Type: StrokeDraw, X: 1, Y: 1, Size: 1, Tool: "eraser", ParticipantID: "spoofed"}})
	require.Len(t, got, 1)
	assert.Empty(t, got[0].ParticipantID)
}

func TestRotate(t *testing.T) {
	ids := []string{"a", "b", "c"}
	assert.Equal(t, []string{"b", "c", "a"}, rotate(ids, 1))
	assert.Equal(t, ids, rotate(ids, 3))
	assert.Nil(t, rotate(nil, 2))
}

func TestFilterNominations(t *testing.T) {
	menu := []string{"A", "B", "C"}
	assert.Equal(t, []string{"B", "A"}, filterNominations(menu, []string{" B ", "Z", "A", "B"}, 5))
	assert.Equal(t, []string{"A"}, filterNominations(menu, []string{"A", "B"}, 1))
}

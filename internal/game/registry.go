package game

import (
	"context"
	"fmt"
	"sync"

	"sketchparty/internal/content"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const maxCodeAttempts = 16

// Registry maps room codes to rooms and participants to their room code.
type Registry struct {
	mu           sync.Mutex
	rooms        map[string]Room
	participants map[string]string

	settings Settings
	content  content.Provider
	clock    clockwork.Clock
	notifier Notifier
	newCode  func() string
	onRemove func(code string)
	onForget func(code string, ids []string)
}

type Option func(*Registry)

func WithClock(clock clockwork.Clock) Option {
	return func(g *Registry) { g.clock = clock }
}

func WithNotifier(notifier Notifier) Option {
	return func(g *Registry) { g.notifier = notifier }
}

func WithCodeGenerator(fn func() string) Option {
	return func(g *Registry) { g.newCode = fn }
}

// WithRemoveHook registers fn to run whenever a room is deleted. It runs with
// the registry lock held and must not call back into the registry.
func WithRemoveHook(fn func(code string)) Option {
	return func(g *Registry) { g.onRemove = fn }
}

// WithForgetHook registers fn to run when participants dropped at a round
// boundary are released. It runs with the registry lock held.
func WithForgetHook(fn func(code string, ids []string)) Option {
	return func(g *Registry) { g.onForget = fn }
}

func NewRegistry(settings Settings, provider content.Provider, opts ...Option) *Registry {
	g := &Registry{
		rooms:        make(map[string]Room),
		participants: make(map[string]string),
		settings:     settings,
		content:      provider,
		clock:        clockwork.NewRealClock(),
		notifier:     nopNotifier{},
		newCode:      NewRoomCode,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Create opens a room in the requested mode with the caller as host.
func (g *Registry) Create(name string, mode Mode, connID string) (Room, Participant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	code := ""
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate := g.newCode()
		if _, taken := g.rooms[candidate]; !taken {
			code = candidate
			break
		}
	}
	if code == "" {
		return nil, Participant{}, fmt.Errorf("allocate room code: %d collisions", maxCodeAttempts)
	}

	hostID := uuid.NewString()
	var room Room
	switch mode {
	case ModeSocial:
		social := NewSocialRoom(code, hostID, g.settings, g.content, g.clock, g.notifier)
		social.onDrop = g.dropHook(code)
		room = social
	default:
		mode = ModeScoring
		scoring := NewScoringRoom(code, hostID, g.settings, g.content, g.clock)
		scoring.onDrop = g.dropHook(code)
		room = scoring
	}
	if _, err := room.Join(hostID, name, connID); err != nil {
		return nil, Participant{}, err
	}
	g.rooms[code] = room
	g.participants[hostID] = code
	host, _ := room.Participant(hostID)
	log.Info().Str("room", code).Str("mode", string(mode)).Str("participant", hostID).Msg("room created")
	return room, host, nil
}

// Join reconnects priorID if it belongs to the room, otherwise admits a new
// participant under a fresh identity. The bool result reports a reconnect.
func (g *Registry) Join(code, name, priorID, connID string) (Room, Participant, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[code]
	if !ok {
		return nil, Participant{}, false, ErrRoomNotFound
	}
	id := priorID
	if _, known := room.Participant(priorID); priorID == "" || !known {
		id = uuid.NewString()
	}
	reconnected, err := room.Join(id, name, connID)
	if err != nil {
		return nil, Participant{}, false, err
	}
	g.participants[id] = code
	p, _ := room.Participant(id)
	log.Info().Str("room", code).Str("participant", id).Bool("reconnected", reconnected).Msg("participant joined")
	return room, p, reconnected, nil
}

func (g *Registry) Lookup(code string) (Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[code]
	return room, ok
}

// RoomOf resolves the room a participant belongs to.
func (g *Registry) RoomOf(participantID string) (Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	code, ok := g.participants[participantID]
	if !ok {
		return nil, false
	}
	room, ok := g.rooms[code]
	return room, ok
}

// Disconnect marks the participant offline when connID still owns it. The
// room is deleted once nobody in it is connected; the bool result reports
// that deletion.
func (g *Registry) Disconnect(participantID, connID string) (Room, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	code, ok := g.participants[participantID]
	if !ok {
		return nil, false, ErrRoomNotFound
	}
	room, ok := g.rooms[code]
	if !ok {
		delete(g.participants, participantID)
		return nil, false, ErrRoomNotFound
	}
	if !room.Disconnect(participantID, connID) {
		return room, false, ErrInvalidIntent
	}
	if room.HasConnected() {
		return room, false, nil
	}
	g.removeLocked(code)
	return room, true, nil
}

// ConvertToSocial replaces a lobby scoring room with a deduction room that
// keeps the same code, host and roster.
func (g *Registry) ConvertToSocial(code, requester string) (*SocialRoom, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	scoring, ok := room.(*ScoringRoom)
	if !ok {
		return nil, ErrWrongPhase
	}
	members, hostID, err := scoring.handOff(requester)
	if err != nil {
		return nil, err
	}
	social := NewSocialRoom(code, hostID, g.settings, g.content, g.clock, g.notifier)
	social.onDrop = g.dropHook(code)
	social.adopt(members)
	g.rooms[code] = social
	scoring.Close()
	log.Info().Str("room", code).Int("participants", len(members)).Msg("room converted to social deduction")
	return social, nil
}

// dropHook is called by rooms under their own lock, so the release happens
// on another goroutine to keep registry before room lock order.
func (g *Registry) dropHook(code string) func(ids []string) {
	return func(ids []string) {
		go g.forget(code, ids)
	}
}

// forget drops participant entries that code no longer lists.
func (g *Registry) forget(code string, ids []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room := g.rooms[code]
	released := make([]string, 0, len(ids))
	for _, id := range ids {
		if g.participants[id] != code {
			continue
		}
		if room != nil {
			if _, member := room.Participant(id); member {
				continue
			}
		}
		delete(g.participants, id)
		released = append(released, id)
	}
	if len(released) == 0 {
		return
	}
	if g.onForget != nil {
		g.onForget(code, released)
	}
	log.Debug().Str("room", code).Strs("participants", released).Msg("released dropped participants")
}

func (g *Registry) removeLocked(code string) {
	room, ok := g.rooms[code]
	if !ok {
		return
	}
	delete(g.rooms, code)
	for id, owner := range g.participants {
		if owner == code {
			delete(g.participants, id)
		}
	}
	room.Close()
	if g.onRemove != nil {
		g.onRemove(code)
	}
	log.Info().Str("room", code).Msg("room deleted")
}

// Sweep deletes rooms with no connected participant and drops participant
// entries whose room is gone or no longer lists them. It is safe to run concurrently with reactive
// deletion and never panics on a half torn down room.
func (g *Registry) Sweep() (rooms, refs int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for code, room := range g.rooms {
		if g.sweepRoom(code, room) {
			rooms++
		}
	}
	stale := make(map[string][]string)
	for id, code := range g.participants {
		room, ok := g.rooms[code]
		if !ok {
			delete(g.participants, id)
			refs++
			continue
		}
		if _, member := room.Participant(id); !member {
			delete(g.participants, id)
			stale[code] = append(stale[code], id)
			refs++
		}
	}
	if g.onForget != nil {
		for code, ids := range stale {
			g.onForget(code, ids)
		}
	}
	if rooms > 0 || refs > 0 {
		log.Info().Int("rooms", rooms).Int("refs", refs).Msg("sweep removed abandoned state")
	}
	return rooms, refs
}

func (g *Registry) sweepRoom(code string, room Room) (removed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("room", code).Interface("panic", rec).Msg("sweep failed for room")
			delete(g.rooms, code)
			removed = true
		}
	}()
	if room == nil {
		delete(g.rooms, code)
		return true
	}
	if room.HasConnected() {
		return false
	}
	g.removeLocked(code)
	return true
}

// Run sweeps on every tick of the settings' sweep interval until ctx ends.
func (g *Registry) Run(ctx context.Context) {
	ticker := g.clock.NewTicker(g.settings.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			g.Sweep()
		}
	}
}

// Close deletes every room.
func (g *Registry) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for code := range g.rooms {
		g.removeLocked(code)
	}
}

func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}

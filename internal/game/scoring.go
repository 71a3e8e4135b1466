package game

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"sketchparty/internal/content"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
)

var letters = []Letter{LetterA, LetterB, LetterC, LetterD}

const (
	wordsPerCard  = 9
	cardsPerRound = 4

	usedSetPruneAt   = 60
	usedSetKeepSpan  = 3
	usedSetCloseAt   = 100
	usedSetCloseKeep = 50

	maxStrokeBatches = 1000
)

// Slot is one cell of the 4x9 word grid.
type Slot struct {
	Letter Letter `json:"letter"`
	Index  int    `json:"index"`
}

func (s Slot) Valid() bool {
	if s.Index < 1 || s.Index > wordsPerCard {
		return false
	}
	for _, letter := range letters {
		if s.Letter == letter {
			return true
		}
	}
	return false
}

// Assignment is the secret slot an artist must draw.
type Assignment struct {
	Slot
	Word string `json:"word"`
}

type DrawingLock struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

type GuessRecord struct {
	GuesserID string    `json:"guesser_id"`
	TargetID  string    `json:"target_id"`
	Slot      Slot      `json:"slot"`
	At        time.Time `json:"at"`
	Correct   bool      `json:"correct"`
	seq       int
}

type GuessResult struct {
	TargetID    string     `json:"target_id"`
	Slot        Slot       `json:"slot"`
	Correct     bool       `json:"correct"`
	Truth       Assignment `json:"truth"`
	NewlyLocked bool       `json:"-"`
}

type RoundStart struct {
	Round       int                   `json:"round"`
	Grids       map[Letter][]string   `json:"grids"`
	Assignments map[string]Assignment `json:"-"`
	StartedAt   time.Time             `json:"started_at"`
}

// ScoreBreakdown is one participant's share of a round. Queue and Unclaimed
// describe the participant's own ledger as an artist.
type ScoreBreakdown struct {
	Awarded   []int `json:"awarded"`
	Queue     []int `json:"queue"`
	Unclaimed []int `json:"unclaimed"`
	Penalty   int   `json:"penalty"`
	Total     int   `json:"total"`
}

type RoundResult struct {
	Round       int                       `json:"round"`
	Breakdown   map[string]ScoreBreakdown `json:"breakdown"`
	Scores      map[string]int            `json:"scores"`
	Assignments map[string]Assignment     `json:"assignments"`
	Guesses     []GuessRecord             `json:"guesses"`
	GameOver    bool                      `json:"game_over"`
	WinnerID    string                    `json:"winner_id,omitempty"`
}

type GuessProgress struct {
	Guessed int  `json:"guessed"`
	Total   int  `json:"total"`
	Done    bool `json:"done"`
}

type ScoringState struct {
	Code         string         `json:"code"`
	Mode         Mode           `json:"mode"`
	Phase        string         `json:"phase"`
	Round        int            `json:"round"`
	HostID       string         `json:"host_id"`
	Participants []Participant  `json:"participants"`
	Scores       map[string]int `json:"scores"`
	Revealed     bool           `json:"revealed"`
}

type usedSet struct {
	round int
	index int
}

type scoringRound struct {
	number      int
	grids       map[Letter][]string
	assignments map[string]Assignment
	queues      map[string]*ScoreSequence
	startedAt   time.Time
}

// ScoringRoom runs the scoring draw-and-guess game. All methods are safe for
// concurrent use.
type ScoringRoom struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	settings Settings
	content  content.Provider

	code     string
	hostID   string
	phase    string
	players  roster
	scores   map[string]int
	round    int
	starting bool
	onDrop   func(ids []string)
	revealed bool
	closed   bool

	current  *scoringRound
	usedSets []usedSet
	drawings map[string][][]Stroke
	locks    map[string]DrawingLock
	limiters map[string]*SlidingWindow
	guesses  map[string]map[string]GuessRecord
	finished map[string]bool
	guessSeq int
}

func NewScoringRoom(code, hostID string, settings Settings, provider content.Provider, clock clockwork.Clock) *ScoringRoom {
	r := &ScoringRoom{
		clock:    clock,
		settings: settings,
		content:  provider,
		code:     code,
		hostID:   hostID,
		phase:    PhaseLobby,
		scores:   make(map[string]int),
	}
	r.resetRoundCollections()
	return r
}

func (r *ScoringRoom) resetRoundCollections() {
	r.drawings = make(map[string][][]Stroke)
	r.locks = make(map[string]DrawingLock)
	r.limiters = make(map[string]*SlidingWindow)
	r.guesses = make(map[string]map[string]GuessRecord)
	r.finished = make(map[string]bool)
	r.guessSeq = 0
	r.revealed = false
}

func (r *ScoringRoom) Code() string { return r.code }

func (r *ScoringRoom) Mode() Mode { return ModeScoring }

func (r *ScoringRoom) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

func (r *ScoringRoom) Phase() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Join admits a new participant or reconnects an existing one. The bool
// result reports a reconnect.
func (r *ScoringRoom) Join(id, name, connID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false, ErrRoomNotFound
	}
	if p, ok := r.players.find(id); ok {
		p.ConnID = connID
		p.Connected = true
		return true, nil
	}
	if len(r.players) >= min(r.settings.MaxParticipants, len(letters)*wordsPerCard) {
		return false, ErrRoomFull
	}
	r.players = append(r.players, &Participant{ID: id, Name: name, ConnID: connID, Connected: true})
	r.scores[id] = 0
	return false, nil
}

// Disconnect marks the participant offline if connID still owns the
// participant. An empty connID always matches.
func (r *ScoringRoom) Disconnect(id, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players.find(id)
	if !ok || !p.Connected {
		return false
	}
	if connID != "" && p.ConnID != connID {
		return false
	}
	p.Connected = false
	p.Ready = false
	delete(r.limiters, id)
	delete(r.finished, id)
	if r.phase == PhasePlaying && len(r.drawings[id]) > maxStrokeBatches {
		delete(r.drawings, id)
	}
	return true
}

func (r *ScoringRoom) HasConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players.anyConnected()
}

func (r *ScoringRoom) ParticipantIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players.ids()
}

func (r *ScoringRoom) Participant(id string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players.find(id)
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// SetReady toggles the ready flag in the lobby and reports whether the room
// can now start.
func (r *ScoringRoom) SetReady(id string, ready bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseLobby {
		return false, ErrWrongPhase
	}
	p, ok := r.players.find(id)
	if !ok {
		return false, ErrInvalidIntent
	}
	p.Ready = ready
	return r.canStartLocked(), nil
}

func (r *ScoringRoom) CanStart() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canStartLocked()
}

func (r *ScoringRoom) canStartLocked() bool {
	return len(r.players) >= r.settings.MinParticipants && r.players.allReady()
}

// StartGame starts round one from the lobby.
func (r *ScoringRoom) StartGame(ctx context.Context, requester string) (*RoundStart, error) {
	if err := r.requireHost(requester); err != nil {
		return nil, err
	}
	if !r.CanStart() {
		return nil, ErrWrongPhase
	}
	return r.StartRound(ctx, PhaseLobby)
}

// NextRound starts the following round from round_end.
func (r *ScoringRoom) NextRound(ctx context.Context, requester string) (*RoundStart, error) {
	if err := r.requireHost(requester); err != nil {
		return nil, err
	}
	return r.StartRound(ctx, PhaseRoundEnd)
}

func (r *ScoringRoom) requireHost(requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requester != r.hostID {
		return ErrNotHost
	}
	return nil
}

// StartRound initializes the next round if the room is in the from phase.
// Content is fetched without holding the room lock; the starting flag makes
// a concurrent second call fail with ErrRoundStarting.
func (r *ScoringRoom) StartRound(ctx context.Context, from string) (*RoundStart, error) {
	r.mu.Lock()
	if r.starting {
		r.mu.Unlock()
		return nil, ErrRoundStarting
	}
	if r.closed || r.phase != from {
		r.mu.Unlock()
		return nil, ErrWrongPhase
	}
	r.starting = true
	next := r.round + 1
	r.mu.Unlock()

	cards, err := r.wordPool(ctx, next)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.starting = false
	if err != nil {
		return nil, err
	}
	if r.closed || r.phase != from {
		return nil, ErrWrongPhase
	}
	return r.commitRound(next, cards), nil
}

func (r *ScoringRoom) wordPool(ctx context.Context, round int) ([]string, error) {
	cards, err := r.content.WordCards(ctx, round)
	if err != nil || len(cards) == 0 {
		log.Warn().Err(err).Str("room", r.code).Int("round", round).Msg("no word pool for round, using round 1")
		cards, err = r.content.WordCards(ctx, 1)
	}
	if err != nil {
		return nil, err
	}
	if len(cards) < cardsPerRound {
		return nil, ErrContentUnavailable
	}
	return cards, nil
}

func (r *ScoringRoom) commitRound(next int, cards []string) *RoundStart {
	r.round = next
	r.resetRoundCollections()

	kept, dropped := r.players.withoutDisconnected()
	r.players = kept
	for _, id := range dropped {
		delete(r.scores, id)
		if id == r.hostID && len(kept) > 0 {
			r.hostID = kept[0].ID
		}
	}
	if len(dropped) > 0 && r.onDrop != nil {
		r.onDrop(dropped)
	}

	r.pruneUsedSets()
	picked := r.pickCards(len(cards))

	grids := make(map[Letter][]string, cardsPerRound)
	for i, letter := range letters {
		words := splitCard(cards[picked[i]])
		if len(words) != wordsPerCard {
			log.Warn().Str("room", r.code).Int("round", r.round).Int("words", len(words)).Msg("word card does not have 9 words")
		}
		grids[letter] = words
	}

	slots := make([]Slot, 0, len(letters)*wordsPerCard)
	for _, letter := range letters {
		for index := 1; index <= wordsPerCard; index++ {
			slots = append(slots, Slot{Letter: letter, Index: index})
		}
	}
	rand.Shuffle(len(slots), func(i, j int) { slots[i], slots[j] = slots[j], slots[i] })

	assignments := make(map[string]Assignment, len(r.players))
	queues := make(map[string]*ScoreSequence, len(r.players))
	others := len(r.players) - 1
	for i, p := range r.players {
		slot := slots[i]
		assignments[p.ID] = Assignment{Slot: slot, Word: wordAt(grids[slot.Letter], slot.Index)}
		queues[p.ID] = NewScoreSequence(r.settings.RewardSequence, others)
	}

	r.current = &scoringRound{
		number:      r.round,
		grids:       grids,
		assignments: assignments,
		queues:      queues,
		startedAt:   r.clock.Now(),
	}
	r.phase = PhasePlaying
	log.Info().Str("room", r.code).Int("round", r.round).Int("participants", len(r.players)).Msg("round started")

	return &RoundStart{
		Round:       r.round,
		Grids:       copyGrids(grids),
		Assignments: copyAssignments(assignments),
		StartedAt:   r.current.startedAt,
	}
}

func (r *ScoringRoom) pruneUsedSets() {
	if len(r.usedSets) <= usedSetPruneAt {
		return
	}
	floor := max(1, r.round-usedSetKeepSpan)
	kept := r.usedSets[:0]
	for _, entry := range r.usedSets {
		if entry.round >= floor {
			kept = append(kept, entry)
		}
	}
	r.usedSets = kept
}

// pickCards chooses four card indices not yet used for this round number.
func (r *ScoringRoom) pickCards(poolSize int) []int {
	used := make(map[int]bool)
	for _, entry := range r.usedSets {
		if entry.round == r.round {
			used[entry.index] = true
		}
	}
	available := make([]int, 0, poolSize)
	for i := 0; i < poolSize; i++ {
		if !used[i] {
			available = append(available, i)
		}
	}
	if len(available) < cardsPerRound {
		kept := r.usedSets[:0]
		for _, entry := range r.usedSets {
			if entry.round != r.round {
				kept = append(kept, entry)
			}
		}
		r.usedSets = kept
		available = available[:0]
		for i := 0; i < poolSize; i++ {
			available = append(available, i)
		}
	}
	rand.Shuffle(len(available), func(i, j int) { available[i], available[j] = available[j], available[i] })
	picked := append([]int(nil), available[:cardsPerRound]...)
	for _, index := range picked {
		r.usedSets = append(r.usedSets, usedSet{round: r.round, index: index})
	}
	return picked
}

func splitCard(card string) []string {
	parts := strings.Split(card, ",")
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		words = append(words, strings.TrimSpace(part))
	}
	return words
}

func wordAt(words []string, index int) string {
	if index < 1 || index > len(words) {
		return ""
	}
	return words[index-1]
}

// AddDrawingData appends a validated batch to the participant's stroke log.
// It returns the accepted entries, or false when the batch was dropped.
func (r *ScoringRoom) AddDrawingData(id string, strokes []Stroke) ([]Stroke, bool) {
	valid := ValidateStrokes(strokes)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePlaying || len(valid) == 0 {
		return nil, false
	}
	if _, ok := r.players.find(id); !ok {
		return nil, false
	}
	if _, locked := r.locks[id]; locked {
		return nil, false
	}
	limiter, ok := r.limiters[id]
	if !ok {
		limiter = NewSlidingWindow(r.clock, r.settings.DrawBatchesPerSecond, time.Second)
		r.limiters[id] = limiter
	}
	if !limiter.Allow() {
		return nil, false
	}
	r.drawings[id] = append(r.drawings[id], valid)
	return valid, true
}

// ClearCanvas drops the participant's strokes unless the drawing is locked.
func (r *ScoringRoom) ClearCanvas(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePlaying {
		return false
	}
	if _, locked := r.locks[id]; locked {
		return false
	}
	if _, ok := r.players.find(id); !ok {
		return false
	}
	delete(r.drawings, id)
	return true
}

// LockDrawing freezes a drawing. Only the first lock is recorded.
func (r *ScoringRoom) LockDrawing(id, reason string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lockLocked(id, reason)
}

func (r *ScoringRoom) lockLocked(id, reason string) bool {
	if _, locked := r.locks[id]; locked {
		return false
	}
	r.locks[id] = DrawingLock{Reason: reason, At: r.clock.Now()}
	return true
}

func (r *ScoringRoom) Drawing(id string) [][]Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	batches := r.drawings[id]
	out := make([][]Stroke, len(batches))
	for i, batch := range batches {
		out[i] = append([]Stroke(nil), batch...)
	}
	return out
}

// Lock reports why id's drawing stopped accepting strokes, if it has.
func (r *ScoringRoom) Lock(id string) (DrawingLock, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[id]
	return lock, ok
}

func (r *ScoringRoom) MakeGuess(guesserID, targetID string, slot Slot) (GuessResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePlaying || r.current == nil {
		return GuessResult{}, ErrWrongPhase
	}
	if !slot.Valid() || guesserID == targetID {
		return GuessResult{}, ErrInvalidIntent
	}
	if _, ok := r.players.find(guesserID); !ok {
		return GuessResult{}, ErrInvalidIntent
	}
	truth, ok := r.current.assignments[targetID]
	if !ok {
		return GuessResult{}, ErrInvalidIntent
	}
	made := r.guesses[guesserID]
	if _, repeat := made[targetID]; repeat {
		return GuessResult{}, ErrInvalidIntent
	}
	for _, record := range made {
		if record.Slot == slot {
			return GuessResult{}, ErrInvalidIntent
		}
	}
	if made == nil {
		made = make(map[string]GuessRecord)
		r.guesses[guesserID] = made
	}
	r.guessSeq++
	record := GuessRecord{
		GuesserID: guesserID,
		TargetID:  targetID,
		Slot:      slot,
		At:        r.clock.Now(),
		Correct:   truth.Slot == slot,
		seq:       r.guessSeq,
	}
	made[targetID] = record
	newlyLocked := r.lockLocked(targetID, "first_guess")
	return GuessResult{
		TargetID:    targetID,
		Slot:        slot,
		Correct:     record.Correct,
		Truth:       truth,
		NewlyLocked: newlyLocked,
	}, nil
}

// FinishGuessing marks the participant done and reports whether every
// connected participant is done.
func (r *ScoringRoom) FinishGuessing(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePlaying {
		return false, ErrWrongPhase
	}
	if _, ok := r.players.find(id); !ok {
		return false, ErrInvalidIntent
	}
	r.finished[id] = true
	for _, p := range r.players.connected() {
		if !r.finished[p.ID] {
			return false, nil
		}
	}
	return true, nil
}

// EndRound scores the round and moves to round_end or game_end.
func (r *ScoringRoom) EndRound(requester string) (*RoundResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requester != r.hostID {
		return nil, ErrNotHost
	}
	if r.phase != PhasePlaying || r.current == nil {
		return nil, ErrWrongPhase
	}
	result := r.calculateRoundScores()
	if r.isGameCompleteLocked() {
		r.phase = PhaseGameEnd
		result.GameOver = true
		result.WinnerID = r.leaderLocked()
	} else {
		r.phase = PhaseRoundEnd
	}
	log.Info().Str("room", r.code).Int("round", r.round).Bool("game_over", result.GameOver).Msg("round ended")
	return result, nil
}

// calculateRoundScores pays each artist's queue to correct guessers in
// acceptance order and charges the undistributed remainder to the artist.
func (r *ScoringRoom) calculateRoundScores() *RoundResult {
	breakdown := make(map[string]ScoreBreakdown, len(r.players))
	for _, p := range r.players {
		breakdown[p.ID] = ScoreBreakdown{Awarded: []int{}, Queue: []int{}, Unclaimed: []int{}}
	}
	all := r.guessRecords()
	for _, artist := range r.players {
		queue, ok := r.current.queues[artist.ID]
		if !ok {
			continue
		}
		for _, record := range all {
			if record.TargetID != artist.ID || !record.Correct {
				continue
			}
			value, ok := queue.Take()
			if !ok {
				break
			}
			entry := breakdown[record.GuesserID]
			entry.Awarded = append(entry.Awarded, value)
			entry.Total += value
			breakdown[record.GuesserID] = entry
		}
		penalty := queue.RemainingSum()
		entry := breakdown[artist.ID]
		entry.Queue = queue.Values()
		entry.Unclaimed = queue.Remaining()
		entry.Penalty += penalty
		entry.Total -= penalty
		breakdown[artist.ID] = entry
	}
	for id, entry := range breakdown {
		r.scores[id] += entry.Total
	}
	return &RoundResult{
		Round:       r.round,
		Breakdown:   breakdown,
		Scores:      copyScores(r.scores),
		Assignments: copyAssignments(r.current.assignments),
		Guesses:     all,
	}
}

// guessRecords returns every record sorted by acceptance time, then arrival.
func (r *ScoringRoom) guessRecords() []GuessRecord {
	var all []GuessRecord
	for _, made := range r.guesses {
		for _, record := range made {
			all = append(all, record)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].At.Equal(all[j].At) {
			return all[i].At.Before(all[j].At)
		}
		return all[i].seq < all[j].seq
	})
	return all
}

func (r *ScoringRoom) IsGameComplete() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isGameCompleteLocked()
}

func (r *ScoringRoom) isGameCompleteLocked() bool {
	return r.round >= r.settings.ScoringRounds
}

func (r *ScoringRoom) leaderLocked() string {
	winner := ""
	best := 0
	for _, p := range r.players {
		score := r.scores[p.ID]
		if winner == "" || score > best {
			winner = p.ID
			best = score
		}
	}
	return winner
}

func (r *ScoringRoom) GuessProgress() map[string]GuessProgress {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := max(0, len(r.players)-1)
	progress := make(map[string]GuessProgress, len(r.players))
	for _, p := range r.players {
		progress[p.ID] = GuessProgress{
			Guessed: len(r.guesses[p.ID]),
			Total:   total,
			Done:    r.finished[p.ID],
		}
	}
	return progress
}

// RevealAnswers returns the full assignment map. Repeated calls return the
// same map.
func (r *ScoringRoom) RevealAnswers(requester string) (map[string]Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requester != r.hostID {
		return nil, ErrNotHost
	}
	if r.current == nil {
		return nil, ErrWrongPhase
	}
	r.revealed = true
	return copyAssignments(r.current.assignments), nil
}

// NewGame resets rounds and scores and keeps the roster.
func (r *ScoringRoom) NewGame(requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requester != r.hostID {
		return ErrNotHost
	}
	if r.starting {
		return ErrRoundStarting
	}
	r.round = 0
	r.phase = PhaseLobby
	r.current = nil
	r.usedSets = nil
	r.resetRoundCollections()
	for _, p := range r.players {
		p.Ready = false
		r.scores[p.ID] = 0
	}
	return nil
}

func (r *ScoringRoom) State() ScoringState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ScoringState{
		Code:         r.code,
		Mode:         ModeScoring,
		Phase:        r.phase,
		Round:        r.round,
		HostID:       r.hostID,
		Participants: r.players.snapshot(),
		Scores:       copyScores(r.scores),
		Revealed:     r.revealed,
	}
}

// CurrentRound returns the grids of the round in play and the caller's own
// assignment, if they were dealt one.
func (r *ScoringRoom) CurrentRound(id string) (*RoundStart, *Assignment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhasePlaying || r.current == nil {
		return nil, nil, false
	}
	start := &RoundStart{
		Round:     r.current.number,
		Grids:     copyGrids(r.current.grids),
		StartedAt: r.current.startedAt,
	}
	assignment, ok := r.current.assignments[id]
	if !ok {
		return start, nil, true
	}
	return start, &assignment, true
}

func (r *ScoringRoom) Snapshot() any {
	return r.State()
}

// handOff returns the roster for conversion to another mode. Only the host
// may convert, and only from the lobby.
func (r *ScoringRoom) handOff(requester string) ([]Participant, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requester != r.hostID {
		return nil, "", ErrNotHost
	}
	if r.phase != PhaseLobby || r.starting {
		return nil, "", ErrWrongPhase
	}
	return r.players.snapshot(), r.hostID, nil
}

// Close releases round-scoped state. The room rejects joins afterwards.
func (r *ScoringRoom) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.current = nil
	r.resetRoundCollections()
	if len(r.usedSets) > usedSetCloseAt {
		r.usedSets = append([]usedSet(nil), r.usedSets[len(r.usedSets)-usedSetCloseKeep:]...)
	}
}

func copyScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for id, score := range scores {
		out[id] = score
	}
	return out
}

func copyAssignments(assignments map[string]Assignment) map[string]Assignment {
	out := make(map[string]Assignment, len(assignments))
	for id, assignment := range assignments {
		out[id] = assignment
	}
	return out
}

func copyGrids(grids map[Letter][]string) map[Letter][]string {
	out := make(map[Letter][]string, len(grids))
	for letter, words := range grids {
		out[letter] = append([]string(nil), words...)
	}
	return out
}

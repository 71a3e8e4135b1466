package game

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"sketchparty/internal/content"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ImpostorCard is dealt to the impostor in place of the secret word.
const ImpostorCard = "?"

const (
	drawingPasses       = 2
	maxImpostorGuess    = 64
	impostorReward      = 2
	honestReward        = 1
	voteKindThemes      = "themes"
	voteKindFake        = "fake"
	voteKindCorrectness = "correctness"
)

type Outcome string

const (
	OutcomeNotCaught    Outcome = "not_caught"
	OutcomeGuessedRight Outcome = "caught_guessed_right"
	OutcomeGuessedWrong Outcome = "caught_guessed_wrong"
)

type Card struct {
	Round    int    `json:"round"`
	Theme    string `json:"theme"`
	Word     string `json:"word"`
	Impostor bool   `json:"impostor"`
}

type TurnInfo struct {
	ParticipantID string   `json:"participant_id"`
	Order         []string `json:"order"`
	Cursor        int      `json:"cursor"`
	Pass          int      `json:"pass"`
	DeadlineAt    int64    `json:"deadline_at"`
}

type VoteRecorded struct {
	Kind          string `json:"kind"`
	ParticipantID string `json:"participant_id"`
	Cast          int    `json:"cast"`
	Eligible      int    `json:"eligible"`
}

type SocialRoundResult struct {
	Round          int            `json:"round"`
	ImpostorID     string         `json:"impostor_id"`
	Word           string         `json:"word"`
	Theme          string         `json:"theme"`
	Outcome        Outcome        `json:"outcome"`
	Caught         bool           `json:"caught"`
	Accused        []string       `json:"accused"`
	SuspectVotes   map[string]int `json:"suspect_votes"`
	ImpostorGuess  string         `json:"impostor_guess,omitempty"`
	CorrectVotes   int            `json:"correct_votes"`
	IncorrectVotes int            `json:"incorrect_votes"`
	Deltas         map[string]int `json:"deltas"`
	Scores         map[string]int `json:"scores"`
	GameOver       bool           `json:"game_over"`
	WinnerID       string         `json:"winner_id,omitempty"`
}

// SocialState is the public projection of a deduction room. Fields are only
// populated in the phases where they are not secret.
type SocialState struct {
	Code         string             `json:"code"`
	Mode         Mode               `json:"mode"`
	Phase        string             `json:"phase"`
	Round        int                `json:"round"`
	HostID       string             `json:"host_id"`
	Participants []Participant      `json:"participants"`
	Scores       map[string]int     `json:"scores"`
	DeadlineAt   int64              `json:"deadline_at,omitempty"`
	ThemePool    []string           `json:"theme_pool,omitempty"`
	Theme        string             `json:"theme,omitempty"`
	Turn         *TurnInfo          `json:"turn,omitempty"`
	Voted        []string           `json:"voted,omitempty"`
	Accused      []string           `json:"accused,omitempty"`
	Guess        string             `json:"guess,omitempty"`
	Result       *SocialRoundResult `json:"result,omitempty"`
	WinnerID     string             `json:"winner_id,omitempty"`
}

// SocialRoom runs the impostor drawing game. Every transition, whether
// caused by a participant or by a deadline, runs under mu and pushes its
// events through the Notifier.
type SocialRoom struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	settings Settings
	content  content.Provider
	notify   Notifier
	onDrop   func(ids []string)

	code     string
	hostID   string
	phase    string
	players  roster
	joined   int
	scores   map[string]int
	round    int
	starting bool
	closed   bool
	winnerID string

	catalog     map[string][]string
	menus       map[string][]string
	nominations map[string][]string
	dealt       map[string]bool
	pool        []string
	usedThemes  map[string]bool

	theme      string
	word       string
	impostorID string
	inRound    map[string]bool
	turnOrder  []string
	cursor     int
	pass       int
	strokes    []Stroke
	limiters   map[string]*SlidingWindow

	suspectVotes     map[string]string
	accused          []string
	guess            string
	correctnessVotes map[string]bool
	last             *SocialRoundResult

	deadline deadline
}

func NewSocialRoom(code, hostID string, settings Settings, provider content.Provider, clock clockwork.Clock, notifier Notifier) *SocialRoom {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	r := &SocialRoom{
		clock:      clock,
		settings:   settings,
		content:    provider,
		notify:     notifier,
		code:       code,
		hostID:     hostID,
		phase:      PhaseLobby,
		scores:     make(map[string]int),
		usedThemes: make(map[string]bool),
		deadline:   deadline{clock: clock},
	}
	r.resetSelection()
	r.resetRound()
	return r
}

func (r *SocialRoom) resetSelection() {
	r.catalog = make(map[string][]string)
	r.menus = make(map[string][]string)
	r.nominations = make(map[string][]string)
	r.dealt = make(map[string]bool)
	r.pool = nil
}

func (r *SocialRoom) resetRound() {
	r.theme = ""
	r.word = ""
	r.impostorID = ""
	r.inRound = make(map[string]bool)
	r.turnOrder = nil
	r.cursor = 0
	r.pass = 0
	r.strokes = nil
	r.limiters = make(map[string]*SlidingWindow)
	r.suspectVotes = make(map[string]string)
	r.accused = nil
	r.guess = ""
	r.correctnessVotes = make(map[string]bool)
	r.last = nil
}

func (r *SocialRoom) Code() string { return r.code }

func (r *SocialRoom) Mode() Mode { return ModeSocial }

func (r *SocialRoom) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

func (r *SocialRoom) Phase() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

func (r *SocialRoom) Join(id, name, connID string) (bool, error) {
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
	if len(r.players) >= r.settings.MaxParticipants {
		return false, ErrRoomFull
	}
	r.admit(Participant{ID: id, Name: name, ConnID: connID, Connected: true})
	return false, nil
}

func (r *SocialRoom) admit(p Participant) {
	p.Color = pickColor(r.joined)
	r.joined++
	r.players = append(r.players, &p)
	if _, ok := r.scores[p.ID]; !ok {
		r.scores[p.ID] = 0
	}
}

// adopt copies a roster from a converted room, keeping identities,
// connection handles and ready flags.
func (r *SocialRoom) adopt(participants []Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range participants {
		r.admit(p)
	}
}

// Disconnect marks the participant offline, transfers the host role and
// advances the turn if the participant was drawing.
func (r *SocialRoom) Disconnect(id, connID string) bool {
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
	if id == r.hostID {
		r.transferHost()
	}
	if r.closed {
		return true
	}
	switch r.phase {
	case PhaseDrawing:
		if r.holder() == id {
			r.closeTurn()
		}
	case PhaseThemeSelection:
		if r.themeVotesComplete() {
			r.closeThemeSelection()
		}
	case PhaseVotingFake:
		if r.fakeVotesComplete() {
			r.closeFakeVote()
		}
	case PhaseVotingAnswer:
		if r.correctnessVotesComplete() {
			r.closeCorrectnessVote()
		}
	}
	return true
}

// transferHost hands the role to the first connected participant in roster
// order. With nobody connected the host is left unchanged.
func (r *SocialRoom) transferHost() {
	for _, p := range r.players {
		if p.Connected {
			log.Info().Str("room", r.code).Str("from", r.hostID).Str("to", p.ID).Msg("host transferred")
			r.hostID = p.ID
			return
		}
	}
}

func (r *SocialRoom) HasConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players.anyConnected()
}

func (r *SocialRoom) ParticipantIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players.ids()
}

func (r *SocialRoom) Participant(id string) (Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players.find(id)
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

func (r *SocialRoom) SetReady(id string, ready bool) (bool, error) {
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

func (r *SocialRoom) CanStart() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canStartLocked()
}

func (r *SocialRoom) canStartLocked() bool {
	return len(r.players) >= r.settings.MinParticipants && r.players.allReady()
}

// StartThemeSelection loads the theme catalog and deals every connected
// participant a personal menu.
func (r *SocialRoom) StartThemeSelection(ctx context.Context, requester string) error {
	r.mu.Lock()
	switch {
	case requester != r.hostID:
		r.mu.Unlock()
		return ErrNotHost
	case r.starting:
		r.mu.Unlock()
		return ErrRoundStarting
	case r.closed || r.phase != PhaseLobby || !r.canStartLocked():
		r.mu.Unlock()
		return ErrWrongPhase
	}
	r.starting = true
	r.mu.Unlock()

	themes, err := r.content.Themes(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.starting = false
	if err != nil {
		return err
	}
	if r.closed || r.phase != PhaseLobby {
		return ErrWrongPhase
	}

	r.resetSelection()
	names := make([]string, 0, len(themes))
	for _, theme := range themes {
		if theme.Name == "" || len(theme.Words) == 0 {
			continue
		}
		if _, dup := r.catalog[theme.Name]; dup {
			continue
		}
		r.catalog[theme.Name] = append([]string(nil), theme.Words...)
		names = append(names, theme.Name)
	}
	if len(names) == 0 {
		return ErrContentUnavailable
	}
	r.usedThemes = make(map[string]bool)
	for _, p := range r.players.connected() {
		menu := dealMenu(names, r.settings.ThemeMenuSize)
		r.menus[p.ID] = menu
		for _, theme := range menu {
			r.dealt[theme] = true
		}
	}
	r.phase = PhaseThemeSelection
	r.armDeadline(r.settings.ThemeSelection, r.closeThemeSelection)
	log.Info().Str("room", r.code).Int("themes", len(names)).Msg("theme selection started")

	for id, menu := range r.menus {
		r.notify.ToParticipant(r.code, id, "theme_menu", map[string]any{"themes": menu, "limit": r.settings.ThemePoolSize})
	}
	r.notify.ToRoom(r.code, "theme_selection_started", r.stateLocked())
	return nil
}

// SubmitThemeVotes records up to ThemePoolSize nominations from the
// participant's own menu. A later submission replaces an earlier one.
func (r *SocialRoom) SubmitThemeVotes(id string, themes []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseThemeSelection {
		return ErrWrongPhase
	}
	menu, ok := r.menus[id]
	if !ok {
		return ErrInvalidIntent
	}
	r.nominations[id] = filterNominations(menu, themes, r.settings.ThemePoolSize)
	r.notify.ToRoom(r.code, "vote_recorded", VoteRecorded{
		Kind:          voteKindThemes,
		ParticipantID: id,
		Cast:          len(r.nominations),
		Eligible:      len(r.menus),
	})
	if r.themeVotesComplete() {
		r.closeThemeSelection()
	}
	return nil
}

func (r *SocialRoom) themeVotesComplete() bool {
	for id := range r.menus {
		p, ok := r.players.find(id)
		if !ok || !p.Connected {
			continue
		}
		if _, voted := r.nominations[id]; !voted {
			return false
		}
	}
	return true
}

func (r *SocialRoom) closeThemeSelection() {
	if r.phase != PhaseThemeSelection {
		return
	}
	r.deadline.stop()
	r.finishThemeSelection()
}

func (r *SocialRoom) finishThemeSelection() {
	r.pool = buildThemePool(r.players.ids(), r.nominations, r.dealt, r.settings.ThemePoolSize)
	log.Info().Str("room", r.code).Strs("pool", r.pool).Msg("theme pool built")
	r.startRound()
}

// startRound deals a new round from the pool. With too few connected
// participants the room returns to the lobby instead.
func (r *SocialRoom) startRound() {
	r.deadline.stop()
	kept, dropped := r.players.withoutDisconnected()
	r.players = kept
	for _, id := range dropped {
		delete(r.scores, id)
	}
	if len(dropped) > 0 && r.onDrop != nil {
		r.onDrop(dropped)
	}
	if _, ok := r.players.find(r.hostID); !ok && len(r.players) > 0 {
		r.hostID = r.players[0].ID
	}
	r.resetRound()

	if len(r.players) < r.settings.MinParticipants {
		r.phase = PhaseLobby
		for _, p := range r.players {
			p.Ready = false
		}
		log.Info().Str("room", r.code).Int("connected", len(r.players)).Msg("not enough participants, back to lobby")
		r.notify.ToRoom(r.code, "state", r.stateLocked())
		return
	}

	r.theme = r.pickTheme()
	words := r.catalog[r.theme]
	if len(words) == 0 {
		r.phase = PhaseLobby
		log.Warn().Str("room", r.code).Str("theme", r.theme).Msg("theme has no words, back to lobby")
		r.notify.ToRoom(r.code, "state", r.stateLocked())
		return
	}
	r.round++
	r.word = words[rand.IntN(len(words))]

	ids := r.players.ids()
	r.impostorID = ids[rand.IntN(len(ids))]
	for _, id := range ids {
		r.inRound[id] = true
	}
	r.turnOrder = rotate(ids, rand.IntN(len(ids)))
	r.cursor = 0
	r.pass = 1
	r.strokes = make([]Stroke, 0)
	r.phase = PhaseDrawing
	r.armDeadline(r.settings.Turn, r.closeTurn)
	log.Info().Str("room", r.code).Int("round", r.round).Str("theme", r.theme).Msg("round started")

	for _, id := range ids {
		r.notify.ToParticipant(r.code, id, "card", r.cardLocked(id))
	}
	r.notify.ToRoom(r.code, "round_started", r.stateLocked())
	r.notify.ToRoom(r.code, "turn_changed", r.turnInfo())
}

func (r *SocialRoom) cardLocked(id string) Card {
	card := Card{Round: r.round, Theme: r.theme, Word: r.word}
	if id == r.impostorID {
		card.Word = ImpostorCard
		card.Impostor = true
	}
	return card
}

// CardFor returns the participant's card while a round is in play, for
// resynchronizing a reconnected client.
func (r *SocialRoom) CardFor(id string) (Card, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.phase {
	case PhaseDrawing, PhaseVotingFake, PhaseFakeGuessing, PhaseVotingAnswer:
	default:
		return Card{}, false
	}
	if !r.inRound[id] {
		return Card{}, false
	}
	return r.cardLocked(id), true
}

// pickTheme prefers pool themes not yet used this game and resets the
// exclusion once every pool theme has been used.
func (r *SocialRoom) pickTheme() string {
	pool := r.pool
	if len(pool) == 0 {
		for name := range r.catalog {
			pool = append(pool, name)
		}
	}
	candidates := make([]string, 0, len(pool))
	for _, theme := range pool {
		if !r.usedThemes[theme] {
			candidates = append(candidates, theme)
		}
	}
	if len(candidates) == 0 {
		r.usedThemes = make(map[string]bool)
		candidates = append(candidates, pool...)
	}
	if len(candidates) == 0 {
		return ""
	}
	theme := candidates[rand.IntN(len(candidates))]
	r.usedThemes[theme] = true
	return theme
}

func (r *SocialRoom) holder() string {
	if r.phase != PhaseDrawing || r.cursor >= len(r.turnOrder) {
		return ""
	}
	return r.turnOrder[r.cursor]
}

func (r *SocialRoom) turnInfo() TurnInfo {
	return TurnInfo{
		ParticipantID: r.holder(),
		Order:         append([]string(nil), r.turnOrder...),
		Cursor:        r.cursor,
		Pass:          r.pass,
		DeadlineAt:    r.deadline.expiresAt(),
	}
}

// AddDrawingStroke appends strokes from the current turn holder, stamped
// with the holder's color.
func (r *SocialRoom) AddDrawingStroke(id string, strokes []Stroke) ([]Stroke, error) {
	valid := ValidateStrokes(strokes)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseDrawing {
		return nil, ErrWrongPhase
	}
	if r.holder() != id {
		return nil, ErrInvalidIntent
	}
	p, ok := r.players.find(id)
	if !ok {
		return nil, ErrInvalidIntent
	}
	accepted := make([]Stroke, 0, len(valid))
	for _, stroke := range valid {
		if stroke.Type == StrokeFill {
			continue
		}
		if stroke.Type != StrokeEnd {
			stroke.Color = p.Color
		}
		stroke.ParticipantID = id
		accepted = append(accepted, stroke)
	}
	if len(accepted) == 0 {
		return nil, ErrInvalidIntent
	}
	limiter, ok := r.limiters[id]
	if !ok {
		limiter = NewSlidingWindow(r.clock, r.settings.DrawBatchesPerSecond, time.Second)
		r.limiters[id] = limiter
	}
	if !limiter.Allow() {
		return nil, ErrInvalidIntent
	}
	r.strokes = append(r.strokes, accepted...)
	r.notify.ToRoom(r.code, "stroke_added", map[string]any{"participant_id": id, "strokes": accepted})
	return accepted, nil
}

// Strokes returns the shared canvas for the current round.
func (r *SocialRoom) Strokes() []Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Stroke(nil), r.strokes...)
}

func (r *SocialRoom) FinishTurn(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseDrawing {
		return ErrWrongPhase
	}
	if r.holder() != id {
		return ErrInvalidIntent
	}
	r.closeTurn()
	return nil
}

// TurnTimedOut is the holder's own report that the countdown ran out.
func (r *SocialRoom) TurnTimedOut(id string) error {
	return r.FinishTurn(id)
}

func (r *SocialRoom) closeTurn() {
	if r.phase != PhaseDrawing {
		return
	}
	r.deadline.stop()
	r.nextTurn()
}

func (r *SocialRoom) nextTurn() {
	r.cursor++
	if r.cursor >= len(r.turnOrder) {
		r.cursor = 0
		r.pass++
	}
	if r.pass > drawingPasses {
		r.startVotingForFake()
		return
	}
	if p, ok := r.players.find(r.holder()); !ok || !p.Connected {
		r.nextTurn()
		return
	}
	r.armDeadline(r.settings.Turn, r.closeTurn)
	r.notify.ToRoom(r.code, "turn_changed", r.turnInfo())
}

func (r *SocialRoom) startVotingForFake() {
	r.suspectVotes = make(map[string]string)
	r.phase = PhaseVotingFake
	r.armDeadline(r.settings.FakeVote, r.closeFakeVote)
	r.notify.ToRoom(r.code, "fake_voting_started", r.stateLocked())
}

func (r *SocialRoom) SubmitVoteForFake(voterID, suspectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseVotingFake {
		return ErrWrongPhase
	}
	if !r.inRound[voterID] || !r.inRound[suspectID] || voterID == suspectID {
		return ErrInvalidIntent
	}
	if _, voted := r.suspectVotes[voterID]; voted {
		return ErrInvalidIntent
	}
	r.suspectVotes[voterID] = suspectID
	r.notify.ToRoom(r.code, "vote_recorded", VoteRecorded{
		Kind:          voteKindFake,
		ParticipantID: voterID,
		Cast:          len(r.suspectVotes),
		Eligible:      len(r.fakeVoters()),
	})
	if r.fakeVotesComplete() {
		r.closeFakeVote()
	}
	return nil
}

func (r *SocialRoom) fakeVoters() []string {
	var out []string
	for _, p := range r.players {
		if p.Connected && r.inRound[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}

func (r *SocialRoom) fakeVotesComplete() bool {
	for _, id := range r.fakeVoters() {
		if _, voted := r.suspectVotes[id]; !voted {
			return false
		}
	}
	return true
}

func (r *SocialRoom) closeFakeVote() {
	if r.phase != PhaseVotingFake {
		return
	}
	r.deadline.stop()
	r.finishVotingForFake()
}

func (r *SocialRoom) finishVotingForFake() {
	tally := tallySuspects(r.suspectVotes)
	r.accused = accusedFrom(r.turnOrder, tally)
	caught := false
	for _, id := range r.accused {
		if id == r.impostorID {
			caught = true
		}
	}
	if !caught {
		r.endRound(OutcomeNotCaught)
		return
	}
	r.phase = PhaseFakeGuessing
	r.armDeadline(r.settings.ImpostorGuess, func() { r.closeGuess("") })
	r.notify.ToRoom(r.code, "impostor_guessing_started", r.stateLocked())
}

func tallySuspects(votes map[string]string) map[string]int {
	tally := make(map[string]int)
	for _, suspect := range votes {
		tally[suspect]++
	}
	return tally
}

// accusedFrom returns everyone tied at the highest vote count, in order.
func accusedFrom(order []string, tally map[string]int) []string {
	top := 0
	for _, count := range tally {
		top = max(top, count)
	}
	if top == 0 {
		return nil
	}
	var accused []string
	for _, id := range order {
		if tally[id] == top {
			accused = append(accused, id)
		}
	}
	return accused
}

// SubmitGuess accepts the impostor's guess at the secret word.
func (r *SocialRoom) SubmitGuess(id, guess string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseFakeGuessing {
		return ErrWrongPhase
	}
	if id != r.impostorID {
		return ErrInvalidIntent
	}
	guess = strings.TrimSpace(guess)
	if guess == "" || len(guess) > maxImpostorGuess {
		return ErrInvalidIntent
	}
	r.closeGuess(guess)
	return nil
}

func (r *SocialRoom) closeGuess(guess string) {
	if r.phase != PhaseFakeGuessing {
		return
	}
	r.deadline.stop()
	r.finishGuessing(guess)
}

// finishGuessing resolves an empty guess as wrong. Otherwise the honest
// participants judge it.
func (r *SocialRoom) finishGuessing(guess string) {
	if guess == "" {
		r.endRound(OutcomeGuessedWrong)
		return
	}
	r.guess = guess
	r.correctnessVotes = make(map[string]bool)
	r.phase = PhaseVotingAnswer
	if r.correctnessVotesComplete() {
		r.finishVotingForCorrectness()
		return
	}
	r.armDeadline(r.settings.CorrectnessVote, r.closeCorrectnessVote)
	r.notify.ToRoom(r.code, "answer_voting_started", r.stateLocked())
}

func (r *SocialRoom) SubmitCorrectnessVote(id string, correct bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != PhaseVotingAnswer {
		return ErrWrongPhase
	}
	if !r.inRound[id] || id == r.impostorID {
		return ErrInvalidIntent
	}
	if _, voted := r.correctnessVotes[id]; voted {
		return ErrInvalidIntent
	}
	r.correctnessVotes[id] = correct
	r.notify.ToRoom(r.code, "vote_recorded", VoteRecorded{
		Kind:          voteKindCorrectness,
		ParticipantID: id,
		Cast:          len(r.correctnessVotes),
		Eligible:      len(r.correctnessVoters()),
	})
	if r.correctnessVotesComplete() {
		r.closeCorrectnessVote()
	}
	return nil
}

func (r *SocialRoom) correctnessVoters() []string {
	var out []string
	for _, id := range r.fakeVoters() {
		if id != r.impostorID {
			out = append(out, id)
		}
	}
	return out
}

func (r *SocialRoom) correctnessVotesComplete() bool {
	for _, id := range r.correctnessVoters() {
		if _, voted := r.correctnessVotes[id]; !voted {
			return false
		}
	}
	return true
}

func (r *SocialRoom) closeCorrectnessVote() {
	if r.phase != PhaseVotingAnswer {
		return
	}
	r.deadline.stop()
	r.finishVotingForCorrectness()
}

func (r *SocialRoom) finishVotingForCorrectness() {
	yes, no := countBallots(r.correctnessVotes)
	if judgedCorrect(yes, no) {
		r.endRound(OutcomeGuessedRight)
		return
	}
	r.endRound(OutcomeGuessedWrong)
}

func countBallots(votes map[string]bool) (int, int) {
	yes, no := 0, 0
	for _, correct := range votes {
		if correct {
			yes++
		} else {
			no++
		}
	}
	return yes, no
}

// judgedCorrect needs a strict majority of cast ballots; a tie is incorrect.
func judgedCorrect(yes, no int) bool {
	return yes > no
}

// AwardPoints returns the score changes for a round outcome.
func AwardPoints(outcome Outcome, impostorID string, participants []string) map[string]int {
	deltas := make(map[string]int)
	switch outcome {
	case OutcomeNotCaught, OutcomeGuessedRight:
		deltas[impostorID] = impostorReward
	case OutcomeGuessedWrong:
		for _, id := range participants {
			if id != impostorID {
				deltas[id] = honestReward
			}
		}
	}
	return deltas
}

func (r *SocialRoom) endRound(outcome Outcome) {
	r.deadline.stop()
	deltas := AwardPoints(outcome, r.impostorID, r.turnOrder)
	for id, delta := range deltas {
		if _, ok := r.players.find(id); ok {
			r.scores[id] += delta
		}
	}
	yes, no := countBallots(r.correctnessVotes)
	result := &SocialRoundResult{
		Round:          r.round,
		ImpostorID:     r.impostorID,
		Word:           r.word,
		Theme:          r.theme,
		Outcome:        outcome,
		Caught:         outcome != OutcomeNotCaught,
		Accused:        append([]string(nil), r.accused...),
		SuspectVotes:   tallySuspects(r.suspectVotes),
		ImpostorGuess:  r.guess,
		CorrectVotes:   yes,
		IncorrectVotes: no,
		Deltas:         deltas,
		Scores:         copyScores(r.scores),
	}
	for _, p := range r.players {
		if r.scores[p.ID] >= r.settings.WinScore {
			result.GameOver = true
			result.WinnerID = p.ID
			break
		}
	}
	r.last = result
	if result.GameOver {
		r.phase = PhaseGameEnd
		r.winnerID = result.WinnerID
	} else {
		r.phase = PhaseRoundEnd
	}
	log.Info().Str("room", r.code).Int("round", r.round).Str("outcome", string(outcome)).Bool("game_over", result.GameOver).Msg("round ended")
	r.notify.ToRoom(r.code, "round_ended", result)
	if result.GameOver {
		r.notify.ToRoom(r.code, "game_ended", map[string]any{"winner_id": result.WinnerID, "scores": result.Scores})
	}
}

// LastResult returns the most recent round result, if any.
func (r *SocialRoom) LastResult() *SocialRoundResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil
	}
	out := *r.last
	return &out
}

func (r *SocialRoom) NextRound(requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requester != r.hostID {
		return ErrNotHost
	}
	if r.phase != PhaseRoundEnd {
		return ErrWrongPhase
	}
	r.startRound()
	return nil
}

// NewGame returns to the lobby with zeroed scores and the roster intact.
func (r *SocialRoom) NewGame(requester string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if requester != r.hostID {
		return ErrNotHost
	}
	if r.starting {
		return ErrRoundStarting
	}
	r.deadline.stop()
	r.round = 0
	r.phase = PhaseLobby
	r.winnerID = ""
	r.usedThemes = make(map[string]bool)
	r.resetSelection()
	r.resetRound()
	for _, p := range r.players {
		p.Ready = false
		r.scores[p.ID] = 0
	}
	return nil
}

func (r *SocialRoom) State() SocialState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *SocialRoom) Snapshot() any {
	return r.State()
}

func (r *SocialRoom) stateLocked() SocialState {
	state := SocialState{
		Code:         r.code,
		Mode:         ModeSocial,
		Phase:        r.phase,
		Round:        r.round,
		HostID:       r.hostID,
		Participants: r.players.snapshot(),
		Scores:       copyScores(r.scores),
		DeadlineAt:   r.deadline.expiresAt(),
	}
	switch r.phase {
	case PhaseThemeSelection:
		state.Voted = sortedKeys(r.nominations, r.players)
	case PhaseDrawing:
		state.Theme = r.theme
		state.ThemePool = append([]string(nil), r.pool...)
		turn := r.turnInfo()
		state.Turn = &turn
	case PhaseVotingFake:
		state.Theme = r.theme
		state.Voted = sortedKeys(r.suspectVotes, r.players)
	case PhaseFakeGuessing:
		state.Theme = r.theme
		state.Accused = append([]string(nil), r.accused...)
	case PhaseVotingAnswer:
		state.Theme = r.theme
		state.Accused = append([]string(nil), r.accused...)
		state.Guess = r.guess
		state.Voted = sortedKeys(r.correctnessVotes, r.players)
	case PhaseRoundEnd, PhaseGameEnd:
		state.Theme = r.theme
		if r.last != nil {
			result := *r.last
			state.Result = &result
		}
		state.WinnerID = r.winnerID
	}
	return state
}

// sortedKeys lists the ids present in m in roster order.
func sortedKeys[V any](m map[string]V, players roster) []string {
	out := make([]string, 0, len(m))
	for _, p := range players {
		if _, ok := m[p.ID]; ok {
			out = append(out, p.ID)
		}
	}
	return out
}

func (r *SocialRoom) armDeadline(after time.Duration, closePhase func()) {
	phase := r.phase
	r.deadline.arm(after, func(seq uint64) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed || !r.deadline.current(seq) || r.phase != phase {
			return
		}
		log.Info().Str("room", r.code).Str("phase", phase).Msg("phase closed by deadline")
		closePhase()
	})
}

// Close cancels the pending deadline and releases round state.
func (r *SocialRoom) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.deadline.stop()
	r.resetSelection()
	r.resetRound()
}

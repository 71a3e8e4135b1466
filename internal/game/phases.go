package game

const (
	PhaseLobby          = "lobby"
	PhasePlaying        = "playing"
	PhaseRoundEnd       = "round_end"
	PhaseGameEnd        = "game_end"
	PhaseThemeSelection = "theme_selection"
	PhaseDrawing        = "drawing"
	PhaseVotingFake     = "voting_fake"
	PhaseFakeGuessing   = "fake_guessing"
	PhaseVotingAnswer   = "voting_answer"
)

// Room is the variant held by the registry: either a *ScoringRoom or a
// *SocialRoom. Callers switch on the concrete type for mode-specific intents.
type Room interface {
	Code() string
	Mode() Mode
	HostID() string
	Phase() string
	Join(id, name, connID string) (bool, error)
	Disconnect(id, connID string) bool
	HasConnected() bool
	ParticipantIDs() []string
	Participant(id string) (Participant, bool)
	Snapshot() any
	Close()
}

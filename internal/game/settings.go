package game

import "time"

type Mode string

const (
	ModeScoring Mode = "scoring"
	ModeSocial  Mode = "social"
)

type Settings struct {
	MaxParticipants      int
	MinParticipants      int
	ScoringRounds        int
	RewardSequence       []int
	DrawBatchesPerSecond int
	ThemeSelection       time.Duration
	Turn                 time.Duration
	FakeVote             time.Duration
	ImpostorGuess        time.Duration
	CorrectnessVote      time.Duration
	WinScore             int
	ThemeMenuSize        int
	ThemePoolSize        int
	SweepInterval        time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		MaxParticipants:      12,
		MinParticipants:      3,
		ScoringRounds:        4,
		RewardSequence:       []int{4, 3, 3, 2, 2, 2, 1, 1},
		DrawBatchesPerSecond: 60,
		ThemeSelection:       20 * time.Second,
		Turn:                 60 * time.Second,
		FakeVote:             30 * time.Second,
		ImpostorGuess:        30 * time.Second,
		CorrectnessVote:      15 * time.Second,
		WinScore:             5,
		ThemeMenuSize:        12,
		ThemePoolSize:        5,
		SweepInterval:        5 * time.Minute,
	}
}

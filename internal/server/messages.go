package server

import (
	"encoding/json"
	"strings"
	"sync"

	"sketchparty/internal/game"

	"github.com/go-playground/validator/v10"
)

// envelope is the wire frame for both directions.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func encodeEvent(event string, payload any) ([]byte, error) {
	return json.Marshal(outbound{Type: event, Data: payload})
}

type createRoomRequest struct {
	Name string `json:"name" validate:"required,max=32"`
	Mode string `json:"mode" validate:"omitempty,oneof=scoring social"`
}

type joinRoomRequest struct {
	Code          string `json:"code" validate:"required,len=6,alphanum"`
	Name          string `json:"name" validate:"required,max=32"`
	ParticipantID string `json:"participant_id" validate:"omitempty,uuid"`
}

type setReadyRequest struct {
	Ready bool `json:"ready"`
}

type strokesRequest struct {
	Strokes []game.Stroke `json:"strokes" validate:"required,min=1,max=500"`
}

type guessRequest struct {
	TargetID string      `json:"target_id" validate:"required"`
	Letter   game.Letter `json:"letter" validate:"required,oneof=A B C D"`
	Index    int         `json:"index" validate:"min=1,max=9"`
}

type themesRequest struct {
	Themes []string `json:"themes" validate:"max=64,dive,max=64"`
}

type suspectRequest struct {
	SuspectID string `json:"suspect_id" validate:"required"`
}

type impostorGuessRequest struct {
	Guess string `json:"guess" validate:"max=256"`
}

type correctnessRequest struct {
	Correct bool `json:"correct"`
}

type participantEvent struct {
	Participant game.Participant `json:"participant"`
	State       any              `json:"state"`
}

type roomJoined struct {
	Code        string           `json:"code"`
	Participant game.Participant `json:"participant"`
	Reconnected bool             `json:"reconnected"`
	State       any              `json:"state"`
}

type readyChanged struct {
	ParticipantID string `json:"participant_id"`
	Ready         bool   `json:"ready"`
}

type personalRound struct {
	*game.RoundStart
	Assignment *game.Assignment `json:"assignment,omitempty"`
}

type strokesEvent struct {
	ParticipantID string        `json:"participant_id"`
	Strokes       []game.Stroke `json:"strokes"`
}

type lockedEvent struct {
	ParticipantID string `json:"participant_id"`
	Reason        string `json:"reason"`
}

type finishedEvent struct {
	ParticipantID string `json:"participant_id"`
	AllFinished   bool   `json:"all_finished"`
}

type gameEnded struct {
	WinnerID string         `json:"winner_id,omitempty"`
	Scores   map[string]int `json:"scores"`
}

type disconnectedEvent struct {
	ParticipantID string `json:"participant_id"`
	State         any    `json:"state"`
}

type errorEvent struct {
	Message string `json:"message"`
}

var (
	payloadValidatorOnce sync.Once
	payloadValidator     *validator.Validate
)

func payloadValidation() *validator.Validate {
	payloadValidatorOnce.Do(func() {
		payloadValidator = validator.New()
	})
	return payloadValidator
}

// decode unmarshals data into req, trims its name-like fields and validates
// it. Any failure is reported as an invalid intent.
func decode(data json.RawMessage, req any) error {
	if len(data) > 0 {
		if err := json.Unmarshal(data, req); err != nil {
			return game.ErrInvalidIntent
		}
	}
	switch r := req.(type) {
	case *createRoomRequest:
		r.Name = strings.TrimSpace(r.Name)
	case *joinRoomRequest:
		r.Name = strings.TrimSpace(r.Name)
		r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	}
	if err := payloadValidation().Struct(req); err != nil {
		return game.ErrInvalidIntent
	}
	return nil
}

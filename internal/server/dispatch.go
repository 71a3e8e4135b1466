package server

import (
	"context"
	"encoding/json"
	"time"

	"sketchparty/internal/game"

	"github.com/rs/zerolog/log"
)

const contentTimeout = 5 * time.Second

type intentHandler func(s *Server, c *client, data json.RawMessage) error

var intents = map[string]intentHandler{
	"create_room":       handleCreateRoom,
	"join_room":         handleJoinRoom,
	"set_ready":         handleSetReady,
	"start_game":        handleStartGame,
	"convert_to_social": handleConvertToSocial,
	"new_game":          handleNewGame,
	"sync":              handleSync,
	"drawing_update":    handleDrawingUpdate,
	"clear_canvas":      handleClearCanvas,
	"make_guess":        handleMakeGuess,
	"finish_guessing":   handleFinishGuessing,
	"end_round":         handleEndRound,
	"reveal_answers":    handleRevealAnswers,
	"next_round":        handleNextRound,
	"submit_themes":     handleSubmitThemes,
	"draw_stroke":       handleDrawStroke,
	"finish_turn":       handleFinishTurn,
	"turn_timeout":      handleTurnTimeout,
	"vote_fake":         handleVoteFake,
	"impostor_guess":    handleImpostorGuess,
	"vote_answer":       handleVoteAnswer,
	"next_round_social": handleNextRoundSocial,
}

// dispatch runs one intent. Only room-not-found and room-full reach the
// client as an error event; every other rejection is dropped.
func (s *Server) dispatch(c *client, msg envelope) {
	handle, ok := intents[msg.Type]
	if !ok {
		log.Debug().Str("conn", c.id).Str("intent", msg.Type).Msg("unknown intent")
		return
	}
	err := handle(s, c, msg.Data)
	if err == nil {
		return
	}
	if game.IsUserVisible(err) {
		s.hub.sendTo(c, "error", errorEvent{Message: err.Error()})
		return
	}
	log.Debug().Err(err).Str("conn", c.id).Str("intent", msg.Type).Msg("intent rejected")
}

func (s *Server) attach(c *client, code, participantID string) {
	c.bind(participantID, code)
	s.hub.Add(code, participantID, c)
}

func (s *Server) member(c *client) (game.Room, string, error) {
	participantID, _ := c.bound()
	if participantID == "" {
		return nil, "", game.ErrInvalidIntent
	}
	room, ok := s.registry.RoomOf(participantID)
	if !ok {
		return nil, "", game.ErrInvalidIntent
	}
	return room, participantID, nil
}

func (s *Server) scoringMember(c *client) (*game.ScoringRoom, string, error) {
	room, participantID, err := s.member(c)
	if err != nil {
		return nil, "", err
	}
	scoring, ok := room.(*game.ScoringRoom)
	if !ok {
		return nil, "", game.ErrWrongPhase
	}
	return scoring, participantID, nil
}

func handleCreateRoom(s *Server, c *client, data json.RawMessage) error {
	if participantID, _ := c.bound(); participantID != "" {
		return game.ErrInvalidIntent
	}
	var req createRoomRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	room, host, err := s.registry.Create(req.Name, game.Mode(req.Mode), c.id)
	if err != nil {
		return err
	}
	s.attach(c, room.Code(), host.ID)
	s.hub.sendTo(c, "room_created", roomJoined{
		Code:        room.Code(),
		Participant: host,
		State:       room.Snapshot(),
	})
	return nil
}

func handleJoinRoom(s *Server, c *client, data json.RawMessage) error {
	if participantID, _ := c.bound(); participantID != "" {
		return game.ErrInvalidIntent
	}
	var req joinRoomRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	room, participant, reconnected, err := s.registry.Join(req.Code, req.Name, req.ParticipantID, c.id)
	if err != nil {
		return err
	}
	s.attach(c, room.Code(), participant.ID)
	state := room.Snapshot()
	s.hub.sendTo(c, "joined_room", roomJoined{
		Code:        room.Code(),
		Participant: participant,
		Reconnected: reconnected,
		State:       state,
	})
	s.hub.ToRoom(room.Code(), "player_joined", participantEvent{Participant: participant, State: state})
	if reconnected {
		s.resync(c, room, participant.ID)
	}
	return nil
}

// resync replays the private round view a reconnecting client lost.
func (s *Server) resync(c *client, room game.Room, participantID string) {
	switch r := room.(type) {
	case *game.ScoringRoom:
		start, assignment, ok := r.CurrentRound(participantID)
		if !ok {
			return
		}
		s.hub.sendTo(c, "round_started", personalRound{RoundStart: start, Assignment: assignment})
		for _, id := range r.ParticipantIDs() {
			var strokes []game.Stroke
			for _, batch := range r.Drawing(id) {
				strokes = append(strokes, batch...)
			}
			if len(strokes) > 0 {
				s.hub.sendTo(c, "drawing_updated", strokesEvent{ParticipantID: id, Strokes: strokes})
			}
			if lock, locked := r.Lock(id); locked {
				s.hub.sendTo(c, "drawing_locked", lockedEvent{ParticipantID: id, Reason: lock.Reason})
			}
		}
	case *game.SocialRoom:
		if card, ok := r.CardFor(participantID); ok {
			s.hub.sendTo(c, "card", card)
		}
		if strokes := r.Strokes(); len(strokes) > 0 {
			s.hub.sendTo(c, "stroke_added", strokesEvent{Strokes: strokes})
		}
	}
}

type readySetter interface {
	SetReady(id string, ready bool) (bool, error)
}

func handleSetReady(s *Server, c *client, data json.RawMessage) error {
	var req setReadyRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	room, participantID, err := s.member(c)
	if err != nil {
		return err
	}
	setter, ok := room.(readySetter)
	if !ok {
		return game.ErrInvalidIntent
	}
	canStart, err := setter.SetReady(participantID, req.Ready)
	if err != nil {
		return err
	}
	s.hub.ToRoom(room.Code(), "player_ready_changed", readyChanged{ParticipantID: participantID, Ready: req.Ready})
	if canStart {
		s.hub.ToParticipant(room.Code(), room.HostID(), "can_start_game", room.Snapshot())
	}
	return nil
}

func handleStartGame(s *Server, c *client, _ json.RawMessage) error {
	room, participantID, err := s.member(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), contentTimeout)
	defer cancel()
	switch r := room.(type) {
	case *game.ScoringRoom:
		start, err := r.StartGame(ctx, participantID)
		if err != nil {
			return err
		}
		s.announceRound(r, start)
		return nil
	case *game.SocialRoom:
		return r.StartThemeSelection(ctx, participantID)
	default:
		return game.ErrInvalidIntent
	}
}

// announceRound sends every participant the shared grids with their own
// assignment attached, then the public state.
func (s *Server) announceRound(room *game.ScoringRoom, start *game.RoundStart) {
	for id, assignment := range start.Assignments {
		own := assignment
		s.hub.ToParticipant(room.Code(), id, "round_started", personalRound{RoundStart: start, Assignment: &own})
	}
	s.hub.ToRoom(room.Code(), "state", room.Snapshot())
}

func handleConvertToSocial(s *Server, c *client, _ json.RawMessage) error {
	participantID, code := c.bound()
	if participantID == "" {
		return game.ErrInvalidIntent
	}
	social, err := s.registry.ConvertToSocial(code, participantID)
	if err != nil {
		return err
	}
	s.hub.ToRoom(code, "room_converted", social.Snapshot())
	return nil
}

type resetter interface {
	NewGame(requester string) error
}

func handleNewGame(s *Server, c *client, _ json.RawMessage) error {
	room, participantID, err := s.member(c)
	if err != nil {
		return err
	}
	r, ok := room.(resetter)
	if !ok {
		return game.ErrInvalidIntent
	}
	if err := r.NewGame(participantID); err != nil {
		return err
	}
	s.hub.ToRoom(room.Code(), "game_reset", room.Snapshot())
	return nil
}

func handleSync(s *Server, c *client, _ json.RawMessage) error {
	room, participantID, err := s.member(c)
	if err != nil {
		return err
	}
	s.hub.sendTo(c, "state", room.Snapshot())
	s.resync(c, room, participantID)
	return nil
}

func handleDrawingUpdate(s *Server, c *client, data json.RawMessage) error {
	var req strokesRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	room, participantID, err := s.scoringMember(c)
	if err != nil {
		return err
	}
	accepted, ok := room.AddDrawingData(participantID, req.Strokes)
	if !ok {
		return game.ErrInvalidIntent
	}
	s.hub.ToRoomExcept(room.Code(), participantID, "drawing_updated", strokesEvent{ParticipantID: participantID, Strokes: accepted})
	return nil
}

func handleClearCanvas(s *Server, c *client, _ json.RawMessage) error {
	room, participantID, err := s.scoringMember(c)
	if err != nil {
		return err
	}
	if !room.ClearCanvas(participantID) {
		return game.ErrInvalidIntent
	}
	s.hub.ToRoom(room.Code(), "canvas_cleared", strokesEvent{ParticipantID: participantID})
	return nil
}

func handleMakeGuess(s *Server, c *client, data json.RawMessage) error {
	var req guessRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	room, participantID, err := s.scoringMember(c)
	if err != nil {
		return err
	}
	result, err := room.MakeGuess(participantID, req.TargetID, game.Slot{Letter: req.Letter, Index: req.Index})
	if err != nil {
		return err
	}
	s.hub.sendTo(c, "guess_accepted", result)
	if result.NewlyLocked {
		s.hub.ToRoom(room.Code(), "drawing_locked", lockedEvent{ParticipantID: req.TargetID, Reason: "first_guess"})
	}
	s.sendProgress(room)
	return nil
}

func (s *Server) sendProgress(room *game.ScoringRoom) {
	s.hub.ToParticipant(room.Code(), room.HostID(), "guess_progress", room.GuessProgress())
}

func handleFinishGuessing(s *Server, c *client, _ json.RawMessage) error {
	room, participantID, err := s.scoringMember(c)
	if err != nil {
		return err
	}
	allDone, err := room.FinishGuessing(participantID)
	if err != nil {
		return err
	}
	s.hub.ToRoom(room.Code(), "player_finished_guessing", finishedEvent{ParticipantID: participantID, AllFinished: allDone})
	s.sendProgress(room)
	return nil
}

func handleEndRound(s *Server, c *client, _ json.RawMessage) error {
	room, participantID, err := s.scoringMember(c)
	if err != nil {
		return err
	}
	result, err := room.EndRound(participantID)
	if err != nil {
		return err
	}
	s.hub.ToRoom(room.Code(), "round_ended", result)
	if result.GameOver {
		s.hub.ToRoom(room.Code(), "game_ended", gameEnded{WinnerID: result.WinnerID, Scores: result.Scores})
	}
	return nil
}

func handleRevealAnswers(s *Server, c *client, _ json.RawMessage) error {
	room, participantID, err := s.scoringMember(c)
	if err != nil {
		return err
	}
	assignments, err := room.RevealAnswers(participantID)
	if err != nil {
		return err
	}
	s.hub.ToParticipant(room.Code(), participantID, "answers_revealed", map[string]any{"assignments": assignments})
	return nil
}

func handleNextRound(s *Server, c *client, _ json.RawMessage) error {
	room, participantID, err := s.scoringMember(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), contentTimeout)
	defer cancel()
	start, err := room.NextRound(ctx, participantID)
	if err != nil {
		return err
	}
	s.announceRound(room, start)
	return nil
}

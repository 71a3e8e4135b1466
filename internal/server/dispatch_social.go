package server

import (
	"encoding/json"

	"sketchparty/internal/game"
)

// Deduction rooms push their own phase events through the hub, so these
// handlers only translate the intent.

func (s *Server) socialMember(c *client) (*game.SocialRoom, string, error) {
	room, participantID, err := s.member(c)
	if err != nil {
		return nil, "", err
	}
	social, ok := room.(*game.SocialRoom)
	if !ok {
		return nil, "", game.ErrWrongPhase
	}
	return social, participantID, nil
}

func handleSubmitThemes(s *Server, c *client, data json.RawMessage) error {
	var req themesRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	room, participantID, err := s.socialMember(c)
	if err != nil {
		return err
	}
	return room.SubmitThemeVotes(participantID, req.Themes)
}

func handleDrawStroke(s *Server, c *client, data json.RawMessage) error {
	var req strokesRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	room, participantID, err := s.socialMember(c)
	if err != nil {
		return err
	}
	_, err = room.AddDrawingStroke(participantID, req.Strokes)
	return err
}

func handleFinishTurn(s *Server, c *client, _ json.RawMessage) error {
	room, participantID, err := s.socialMember(c)
	if err != nil {
		return err
	}
	return room.FinishTurn(participantID)
}

func handleTurnTimeout(s *Server, c *client, _ json.RawMessage) error {
	room, participantID, err := s.socialMember(c)
	if err != nil {
		return err
	}
	return room.TurnTimedOut(participantID)
}

func handleVoteFake(s *Server, c *client, data json.RawMessage) error {
	var req suspectRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	room, participantID, err := s.socialMember(c)
	if err != nil {
		return err
	}
	return room.SubmitVoteForFake(participantID, req.SuspectID)
}

func handleImpostorGuess(s *Server, c *client, data json.RawMessage) error {
	var req impostorGuessRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	room, participantID, err := s.socialMember(c)
	if err != nil {
		return err
	}
	return room.SubmitGuess(participantID, req.Guess)
}

func handleVoteAnswer(s *Server, c *client, data json.RawMessage) error {
	var req correctnessRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	room, participantID, err := s.socialMember(c)
	if err != nil {
		return err
	}
	return room.SubmitCorrectnessVote(participantID, req.Correct)
}

func handleNextRoundSocial(s *Server, c *client, _ json.RawMessage) error {
	room, participantID, err := s.socialMember(c)
	if err != nil {
		return err
	}
	return room.NextRound(participantID)
}

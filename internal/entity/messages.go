package entity

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/buzzword-bingo/internal/apperror"
)

const ActionWon = "game:won"

// GameSettings is handed from the host to the joining player once.
type GameSettings struct {
	XAxis      int    `json:"xaxis"`
	YAxis      int    `json:"yaxis"`
	WordSource string `json:"word_source"`
}

// ResultMessage announces the end of a game on the result channel.
type ResultMessage struct {
	Action     string `json:"action"`
	WinnerID   string `json:"winner_id"`
	WinnerName string `json:"winner_name"`
}

func NewVictory(player *Player) ResultMessage {
	return ResultMessage{
		Action:     ActionWon,
		WinnerID:   player.ID,
		WinnerName: player.Name,
	}
}

func (that ResultMessage) IsVictory() bool {
	return that.Action == ActionWon && that.WinnerID != ""
}

func (that ResultMessage) IsFrom(player *Player) bool {
	return that.WinnerID == player.ID
}

func EncodeSettings(settings GameSettings) ([]byte, error) {
	if settings.XAxis < 1 || settings.YAxis < 1 {
		return nil, fmt.Errorf("%w: %dx%d", apperror.ErrInvalidDimensions, settings.XAxis, settings.YAxis)
	}

	payload, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("could not marshal settings: %w", err)
	}

	return payload, nil
}

func DecodeSettings(payload []byte) (GameSettings, error) {
	var settings GameSettings
	if err := json.Unmarshal(payload, &settings); err != nil {
		return GameSettings{}, fmt.Errorf("%w: settings: %w", apperror.ErrInvalidMessage, err)
	}

	if settings.XAxis < 1 || settings.YAxis < 1 {
		return GameSettings{}, fmt.Errorf("%w: settings %dx%d", apperror.ErrInvalidMessage, settings.XAxis, settings.YAxis)
	}

	return settings, nil
}

func EncodeResult(message ResultMessage) ([]byte, error) {
	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("could not marshal result: %w", err)
	}

	return payload, nil
}

func DecodeResult(payload []byte) (ResultMessage, error) {
	var message ResultMessage
	if err := json.Unmarshal(payload, &message); err != nil {
		return ResultMessage{}, fmt.Errorf("%w: result: %w", apperror.ErrInvalidMessage, err)
	}

	return message, nil
}

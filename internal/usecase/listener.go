package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/buzzword-bingo/internal/apperror"
	"github.com/rocketscienceinc/buzzword-bingo/internal/entity"
	"github.com/rocketscienceinc/buzzword-bingo/internal/repository"
)

// Listener waits on the result channel for a victory announced by another player.
type Listener struct {
	logger  *slog.Logger
	channel repository.ResultChannel
	self    *entity.Player
}

func NewListener(logger *slog.Logger, channel repository.ResultChannel, self *entity.Player) *Listener {
	return &Listener{
		logger:  logger.With("component", "listener"),
		channel: channel,
		self:    self,
	}
}

// Run blocks until a foreign victory arrives and returns it. The player's own
// announcement is skipped. It returns early only with an error, e.g. when ctx is done.
func (that *Listener) Run(ctx context.Context) (entity.ResultMessage, error) {
	log := that.logger.With("method", "Run")

	for {
		message, err := that.channel.Receive(ctx)
		if errors.Is(err, apperror.ErrInvalidMessage) {
			log.Warn("skipping malformed result", "error", err)
			continue
		}
		if err != nil {
			return entity.ResultMessage{}, fmt.Errorf("listener stopped: %w", err)
		}

		if !message.IsVictory() {
			log.Debug("ignoring message", "action", message.Action)
			continue
		}

		if message.IsFrom(that.self) {
			log.Debug("ignoring own victory")
			continue
		}

		log.Info("foreign victory received", "winner", message.WinnerName, "winner_id", message.WinnerID)

		return message, nil
	}
}

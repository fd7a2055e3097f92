package apperror

import "errors"

var (
	ErrInsufficientWords = errors.New("not enough words for the card")
	ErrInvalidDimensions = errors.New("card dimensions must be positive")
	ErrInvalidCell       = errors.New("invalid cell index")

	ErrAlreadyExists = errors.New("game already exists")
	ErrNotFound      = errors.New("no running game found")
	ErrAlreadySent   = errors.New("settings already sent")
	ErrNotHost       = errors.New("only the host can send settings")
	ErrChannelClosed = errors.New("channel is closed")

	ErrInvalidMessage = errors.New("invalid message")
)

package repository

import (
	"context"
	"time"

	"github.com/rocketscienceinc/buzzword-bingo/internal/entity"
)

const (
	DefaultQueueDepth   = 10
	DefaultChannelTTL   = time.Hour
	DefaultBlockTimeout = 500 * time.Millisecond
)

// SettingsChannel is the one-shot handoff of game settings from host to joiner.
type SettingsChannel interface {
	SendOnce(ctx context.Context, settings entity.GameSettings) error
	ReceiveOnce(ctx context.Context) (entity.GameSettings, error)
	// Close destroys the channel if it still exists.
	Close(ctx context.Context) error
}

type SettingsRepository interface {
	CreateExclusive(ctx context.Context, name string) (SettingsChannel, error)
	OpenExisting(ctx context.Context, name string) (SettingsChannel, error)
}

// ResultChannel is the broadcast channel that carries the win announcement.
type ResultChannel interface {
	Post(ctx context.Context, message entity.ResultMessage) error
	Receive(ctx context.Context) (entity.ResultMessage, error)
	// Leave unregisters the member; the last member to leave destroys the channel.
	Leave(ctx context.Context) error
}

type ResultRepository interface {
	CreateOrJoin(ctx context.Context, name, memberID string) (ResultChannel, error)
	// Reset drops whatever a previous game left under name. Only the holder of
	// the exclusive settings channel may call it, before publishing settings.
	Reset(ctx context.Context, name string) error
}

func settingsKey(name string) string {
	return "bingo:" + name + ":settings"
}

func settingsOwnerKey(name string) string {
	return "bingo:" + name + ":settings:owner"
}

func resultKey(name string) string {
	return "bingo:" + name + ":result"
}

func resultMembersKey(name string) string {
	return "bingo:" + name + ":result:members"
}

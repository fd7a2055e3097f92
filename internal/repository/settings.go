package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/buzzword-bingo/internal/apperror"
	"github.com/rocketscienceinc/buzzword-bingo/internal/entity"
)

// releaseOwned deletes the channel only while it is still owned by the caller,
// so a host never destroys a newer game that reused the name.
var releaseOwned = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1], KEYS[2])
end
return 0
`)

type dbSettings struct {
	client       *redis.Client
	ttl          time.Duration
	blockTimeout time.Duration
}

func NewSettingsRepository(client *redis.Client, ttl, blockTimeout time.Duration) SettingsRepository {
	if ttl <= 0 {
		ttl = DefaultChannelTTL
	}
	if blockTimeout <= 0 {
		blockTimeout = DefaultBlockTimeout
	}

	return &dbSettings{
		client:       client,
		ttl:          ttl,
		blockTimeout: blockTimeout,
	}
}

// CreateExclusive claims the channel name. Only one caller can win the SET NX,
// the others get ErrAlreadyExists.
func (that *dbSettings) CreateExclusive(ctx context.Context, name string) (SettingsChannel, error) {
	token := uuid.NewString()

	created, err := that.client.SetNX(ctx, settingsOwnerKey(name), token, that.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to create settings channel: %w", err)
	}

	if !created {
		return nil, fmt.Errorf("%w: %s", apperror.ErrAlreadyExists, name)
	}

	return &settingsChannel{repo: that, name: name, token: token}, nil
}

func (that *dbSettings) OpenExisting(ctx context.Context, name string) (SettingsChannel, error) {
	exists, err := that.client.Exists(ctx, settingsOwnerKey(name)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to open settings channel: %w", err)
	}

	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNotFound, name)
	}

	return &settingsChannel{repo: that, name: name}, nil
}

type settingsChannel struct {
	repo  *dbSettings
	name  string
	token string // set only on the host side

	mu   sync.Mutex
	sent bool
}

func (that *settingsChannel) SendOnce(ctx context.Context, settings entity.GameSettings) error {
	if that.token == "" {
		return apperror.ErrNotHost
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.sent {
		return apperror.ErrAlreadySent
	}

	payload, err := entity.EncodeSettings(settings)
	if err != nil {
		return err
	}

	key := settingsKey(that.name)
	_, err = that.repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.Expire(ctx, key, that.repo.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to send settings: %w", err)
	}

	that.sent = true

	return nil
}

// ReceiveOnce blocks until the host has sent the settings, then destroys the channel.
func (that *settingsChannel) ReceiveOnce(ctx context.Context) (entity.GameSettings, error) {
	key := settingsKey(that.name)

	for {
		result, err := that.repo.client.BLPop(ctx, that.repo.blockTimeout, key).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return entity.GameSettings{}, ctx.Err()
			}

			exists, err := that.repo.client.Exists(ctx, settingsOwnerKey(that.name)).Result()
			if err != nil {
				return entity.GameSettings{}, fmt.Errorf("failed to check settings channel: %w", err)
			}
			if exists == 0 {
				return entity.GameSettings{}, fmt.Errorf("%w: %s", apperror.ErrNotFound, that.name)
			}

			continue
		}

		if err != nil {
			return entity.GameSettings{}, fmt.Errorf("failed to receive settings: %w", err)
		}

		// result is [key, value]
		settings, err := entity.DecodeSettings([]byte(result[1]))
		if err != nil {
			return entity.GameSettings{}, err
		}

		if err = that.repo.client.Del(ctx, settingsOwnerKey(that.name), key).Err(); err != nil {
			return entity.GameSettings{}, fmt.Errorf("failed to destroy settings channel: %w", err)
		}

		return settings, nil
	}
}

// Close releases an unconsumed channel on the host side. The joiner destroys the
// channel in ReceiveOnce, so Close is a no-op for it.
func (that *settingsChannel) Close(ctx context.Context) error {
	if that.token == "" {
		return nil
	}

	keys := []string{settingsOwnerKey(that.name), settingsKey(that.name)}
	if err := releaseOwned.Run(ctx, that.repo.client, keys, that.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to destroy settings channel: %w", err)
	}

	return nil
}

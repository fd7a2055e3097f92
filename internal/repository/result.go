package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/buzzword-bingo/internal/apperror"
	"github.com/rocketscienceinc/buzzword-bingo/internal/entity"
)

const payloadField = "payload"

// leaveChannel removes a member and destroys the channel once nobody is left.
// Leaving an already destroyed channel is a no-op.
var leaveChannel = redis.NewScript(`
redis.call("SREM", KEYS[1], ARGV[1])
if redis.call("SCARD", KEYS[1]) == 0 then
	redis.call("DEL", KEYS[1], KEYS[2])
	return 1
end
return 0
`)

type dbResult struct {
	client       *redis.Client
	depth        int64
	ttl          time.Duration
	blockTimeout time.Duration
}

func NewResultRepository(client *redis.Client, depth int, ttl, blockTimeout time.Duration) ResultRepository {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	if ttl <= 0 {
		ttl = DefaultChannelTTL
	}
	if blockTimeout <= 0 {
		blockTimeout = DefaultBlockTimeout
	}

	return &dbResult{
		client:       client,
		depth:        int64(depth),
		ttl:          ttl,
		blockTimeout: blockTimeout,
	}
}

// CreateOrJoin registers memberID on the named result channel, creating it if needed.
func (that *dbResult) CreateOrJoin(ctx context.Context, name, memberID string) (ResultChannel, error) {
	membersKey := resultMembersKey(name)

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, membersKey, memberID)
		pipe.Expire(ctx, membersKey, that.ttl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join result channel: %w", err)
	}

	return &resultChannel{
		repo:     that,
		name:     name,
		memberID: memberID,
		lastID:   "0",
	}, nil
}

func (that *dbResult) Reset(ctx context.Context, name string) error {
	if err := that.client.Del(ctx, resultKey(name), resultMembersKey(name)).Err(); err != nil {
		return fmt.Errorf("failed to reset result channel: %w", err)
	}

	return nil
}

type resultChannel struct {
	repo     *dbResult
	name     string
	memberID string

	mu     sync.Mutex // guards lastID
	lastID string
	left   atomic.Bool
}

func (that *resultChannel) Post(ctx context.Context, message entity.ResultMessage) error {
	payload, err := entity.EncodeResult(message)
	if err != nil {
		return err
	}

	key := resultKey(that.name)
	_, err = that.repo.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: key,
			MaxLen: that.repo.depth,
			Values: map[string]any{payloadField: payload},
		})
		pipe.Expire(ctx, key, that.repo.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to post result: %w", err)
	}

	return nil
}

// Receive blocks until the next message arrives. Messages are returned in the
// order they were posted; every member sees every message. A malformed entry
// is consumed and reported as ErrInvalidMessage.
func (that *resultChannel) Receive(ctx context.Context) (entity.ResultMessage, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	key := resultKey(that.name)

	for {
		if that.left.Load() {
			return entity.ResultMessage{}, apperror.ErrChannelClosed
		}

		streams, err := that.repo.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{key, that.lastID},
			Count:   1,
			Block:   that.repo.blockTimeout,
		}).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return entity.ResultMessage{}, ctx.Err()
			}

			continue
		}

		if err != nil {
			if ctx.Err() != nil {
				return entity.ResultMessage{}, ctx.Err()
			}

			return entity.ResultMessage{}, fmt.Errorf("failed to receive result: %w", err)
		}

		if len(streams) == 0 || len(streams[0].Messages) == 0 {
			continue
		}

		entry := streams[0].Messages[0]
		that.lastID = entry.ID

		raw, ok := entry.Values[payloadField].(string)
		if !ok {
			return entity.ResultMessage{}, fmt.Errorf("%w: entry %s has no payload", apperror.ErrInvalidMessage, entry.ID)
		}

		return entity.DecodeResult([]byte(raw))
	}
}

func (that *resultChannel) Leave(ctx context.Context) error {
	keys := []string{resultMembersKey(that.name), resultKey(that.name)}
	if err := leaveChannel.Run(ctx, that.repo.client, keys, that.memberID).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to leave result channel: %w", err)
	}

	that.left.Store(true)

	return nil
}

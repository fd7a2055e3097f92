package repository

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/buzzword-bingo/internal/apperror"
	"github.com/rocketscienceinc/buzzword-bingo/internal/entity"
	"github.com/rocketscienceinc/buzzword-bingo/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultRepository_Broadcast(t *testing.T) {
	ctx, st := suite.New(t)
	repo := NewResultRepository(st.Storage, 10, time.Minute, testBlockTimeout)
	alice := entity.NewPlayer("alice")
	bob := entity.NewPlayer("bob")

	// Given: both players joined the result channel
	aliceChannel, err := repo.CreateOrJoin(ctx, "office", alice.ID)
	require.NoError(t, err)
	bobChannel, err := repo.CreateOrJoin(ctx, "office", bob.ID)
	require.NoError(t, err)

	// When: alice posts her victory
	require.NoError(t, aliceChannel.Post(ctx, entity.NewVictory(alice)))

	// Then: both members receive it
	for _, channel := range []ResultChannel{aliceChannel, bobChannel} {
		message, err := channel.Receive(ctx)
		require.NoError(t, err)
		assert.True(t, message.IsVictory())
		assert.True(t, message.IsFrom(alice))
	}
}

func TestResultRepository_Order(t *testing.T) {
	ctx, st := suite.New(t)
	repo := NewResultRepository(st.Storage, 10, time.Minute, testBlockTimeout)
	alice := entity.NewPlayer("alice")
	bob := entity.NewPlayer("bob")

	channel, err := repo.CreateOrJoin(ctx, "office", "observer")
	require.NoError(t, err)

	require.NoError(t, channel.Post(ctx, entity.NewVictory(alice)))
	require.NoError(t, channel.Post(ctx, entity.NewVictory(bob)))

	first, err := channel.Receive(ctx)
	require.NoError(t, err)
	second, err := channel.Receive(ctx)
	require.NoError(t, err)

	assert.True(t, first.IsFrom(alice))
	assert.True(t, second.IsFrom(bob))
}

func TestResultRepository_Leave(t *testing.T) {
	ctx, st := suite.New(t)
	repo := NewResultRepository(st.Storage, 10, time.Minute, testBlockTimeout)
	alice := entity.NewPlayer("alice")

	aliceChannel, err := repo.CreateOrJoin(ctx, "office", alice.ID)
	require.NoError(t, err)
	bobChannel, err := repo.CreateOrJoin(ctx, "office", "bob")
	require.NoError(t, err)
	require.NoError(t, aliceChannel.Post(ctx, entity.NewVictory(alice)))

	// When: the winner leaves, the channel survives for the other member
	require.NoError(t, aliceChannel.Leave(ctx))
	exists, err := st.Storage.Exists(ctx, resultKey("office")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	// When: the last member leaves, the channel is destroyed
	require.NoError(t, bobChannel.Leave(ctx))
	exists, err = st.Storage.Exists(ctx, resultKey("office"), resultMembersKey("office")).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	// Then: leaving twice is tolerated and receiving after leaving is refused
	require.NoError(t, bobChannel.Leave(ctx))
	_, err = bobChannel.Receive(ctx)
	require.ErrorIs(t, err, apperror.ErrChannelClosed)
}

func TestResultRepository_BoundedDepth(t *testing.T) {
	ctx, st := suite.New(t)
	repo := NewResultRepository(st.Storage, 2, time.Minute, testBlockTimeout)

	channel, err := repo.CreateOrJoin(ctx, "office", "observer")
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, channel.Post(ctx, entity.NewVictory(&entity.Player{ID: name, Name: name})))
	}

	length, err := st.Storage.XLen(ctx, resultKey("office")).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)

	message, err := channel.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "c", message.WinnerID)
}

func TestResultRepository_Reset(t *testing.T) {
	ctx, st := suite.New(t)
	repo := NewResultRepository(st.Storage, 10, time.Minute, testBlockTimeout)
	alice := entity.NewPlayer("alice")

	// Given: a crashed member never left and an old victory is still in the stream
	ghost, err := repo.CreateOrJoin(ctx, "office", "ghost")
	require.NoError(t, err)
	require.NoError(t, ghost.Post(ctx, entity.NewVictory(alice)))

	// When: the next host resets the channel
	require.NoError(t, repo.Reset(ctx, "office"))

	// Then: nothing is left and a new member sees only new messages
	exists, err := st.Storage.Exists(ctx, resultKey("office"), resultMembersKey("office")).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	carol, err := repo.CreateOrJoin(ctx, "office", "carol")
	require.NoError(t, err)
	require.NoError(t, carol.Post(ctx, entity.ResultMessage{Action: "chat"}))

	message, err := carol.Receive(ctx)
	require.NoError(t, err)
	assert.False(t, message.IsVictory())
}

func TestResultRepository_MalformedEntry(t *testing.T) {
	ctx, st := suite.New(t)
	repo := NewResultRepository(st.Storage, 10, time.Minute, testBlockTimeout)
	alice := entity.NewPlayer("alice")

	channel, err := repo.CreateOrJoin(ctx, "office", "observer")
	require.NoError(t, err)

	// Given: a stray entry without payload precedes a real victory
	require.NoError(t, st.Storage.XAdd(ctx, &redis.XAddArgs{
		Stream: resultKey("office"),
		Values: map[string]any{"junk": "1"},
	}).Err())
	require.NoError(t, channel.Post(ctx, entity.NewVictory(alice)))

	// Then: the stray entry is consumed as invalid and the victory follows
	_, err = channel.Receive(ctx)
	require.ErrorIs(t, err, apperror.ErrInvalidMessage)

	message, err := channel.Receive(ctx)
	require.NoError(t, err)
	assert.True(t, message.IsFrom(alice))
}

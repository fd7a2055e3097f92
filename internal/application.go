package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rocketscienceinc/buzzword-bingo/internal/config"
	"github.com/rocketscienceinc/buzzword-bingo/internal/console"
	"github.com/rocketscienceinc/buzzword-bingo/internal/entity"
	"github.com/rocketscienceinc/buzzword-bingo/internal/repository"
	"github.com/rocketscienceinc/buzzword-bingo/internal/repository/storage"
	"github.com/rocketscienceinc/buzzword-bingo/internal/usecase"
	"github.com/rocketscienceinc/buzzword-bingo/internal/wordlist"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type RunOptions struct {
	PlayerName string
	JoinOnly   bool

	Input  io.Reader
	Output io.Writer
}

// RunApp - connects to the channel broker and plays one game.
func RunApp(logger *slog.Logger, conf *config.Config, opts RunOptions) (usecase.Outcome, error) {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if conf.Redis.Host == "" {
		return "", ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, storage.Options{
		Addr:     redisAddrString,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err != nil {
		return "", fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	settings, err := hostSettings(conf.Game)
	if err != nil {
		return "", err
	}

	settingsRepo := repository.NewSettingsRepository(redisStorage.Connection, conf.Game.ChannelTTL, conf.Game.BlockTimeout)
	resultRepo := repository.NewResultRepository(redisStorage.Connection, conf.Game.QueueDepth, conf.Game.ChannelTTL, conf.Game.BlockTimeout)

	session := usecase.NewSession(logger, settingsRepo, resultRepo, console.New(opts.Output), usecase.Options{
		GameName:  conf.Game.Name,
		Player:    entity.NewPlayer(opts.PlayerName),
		Settings:  settings,
		JoinOnly:  opts.JoinOnly,
		Input:     opts.Input,
		LoadWords: wordlist.Load,
	})

	log.Info("Starting game", "game", conf.Game.Name, "redis", redisAddrString, "join_only", opts.JoinOnly)

	outcome, err := session.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("game failed: %w", err)
	}

	return outcome, nil
}

// hostSettings turns a relative word file into an absolute path so a joiner
// started from another directory resolves the same file.
func hostSettings(game config.Game) (entity.GameSettings, error) {
	source := game.WordSource
	if source != wordlist.Builtin && source != "" {
		abs, err := filepath.Abs(source)
		if err != nil {
			return entity.GameSettings{}, fmt.Errorf("could not resolve word source %q: %w", source, err)
		}
		source = abs
	}

	return entity.GameSettings{
		XAxis:      game.XAxis,
		YAxis:      game.YAxis,
		WordSource: source,
	}, nil
}

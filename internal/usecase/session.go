package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/buzzword-bingo/internal/apperror"
	"github.com/rocketscienceinc/buzzword-bingo/internal/entity"
	"github.com/rocketscienceinc/buzzword-bingo/internal/repository"
)

type State string

const (
	StateCreatingOrJoining State = "creating_or_joining"
	StateAwaitingSettings  State = "awaiting_settings"
	StateCardReady         State = "card_ready"
	StatePlaying           State = "playing"
	StateWon               State = "won"
	StateLost              State = "lost"
	StateTerminated        State = "terminated"
)

type Outcome string

const (
	OutcomeWon     Outcome = "won"
	OutcomeLost    Outcome = "lost"
	OutcomeAborted Outcome = "aborted"
)

const cleanupTimeout = 5 * time.Second

var errGameOver = errors.New("game over")

type renderer interface {
	RenderCard(card *entity.Card, marks [][]bool)
	Announce(message string)
	Info(message string)
	Prompt(message string)
}

type Options struct {
	GameName string
	Player   *entity.Player
	// Settings are published when this session becomes the host.
	Settings entity.GameSettings
	// JoinOnly skips the host attempt; a missing game is then ErrNotFound.
	JoinOnly bool

	Input     io.Reader
	LoadWords func(source string) ([]string, error)
	Rand      *rand.Rand
}

// Session plays one game for the local player.
type Session struct {
	logger       *slog.Logger
	settingsRepo repository.SettingsRepository
	resultRepo   repository.ResultRepository
	console      renderer
	opts         Options

	mu      sync.Mutex
	state   State
	outcome Outcome
	decided bool
}

func NewSession(
	logger *slog.Logger,
	settingsRepo repository.SettingsRepository,
	resultRepo repository.ResultRepository,
	console renderer,
	opts Options,
) *Session {
	return &Session{
		logger:       logger.With("component", "session", "game", opts.GameName, "player", opts.Player.Name),
		settingsRepo: settingsRepo,
		resultRepo:   resultRepo,
		console:      console,
		opts:         opts,
	}
}

func (that *Session) State() State {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state
}

// Run creates or joins the game, then plays until someone wins, the player
// quits or ctx is cancelled.
func (that *Session) Run(ctx context.Context) (Outcome, error) {
	log := that.logger.With("method", "Run")
	defer that.setState(StateTerminated)

	that.setState(StateCreatingOrJoining)

	card, settingsChannel, err := that.handshake(ctx)
	if err != nil {
		return "", err
	}
	defer that.cleanup(ctx, "settings channel", settingsChannel.Close)

	that.setState(StateCardReady)

	grid := entity.NewMarkGrid(card)

	resultChannel, err := that.resultRepo.CreateOrJoin(ctx, that.opts.GameName, that.opts.Player.ID)
	if err != nil {
		return "", fmt.Errorf("failed to join result channel: %w", err)
	}
	defer that.cleanup(ctx, "result channel", resultChannel.Leave)

	that.console.RenderCard(card, grid.Snapshot())

	that.setState(StatePlaying)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		listener := NewListener(that.logger, resultChannel, that.opts.Player)

		message, err := listener.Run(groupCtx)
		if err != nil {
			if groupCtx.Err() != nil {
				return nil
			}
			return err
		}

		if that.decide(OutcomeLost) {
			that.console.Announce(message.WinnerName + " wins!")
			log.Info("game lost", "winner", message.WinnerName)
		}

		return errGameOver
	})

	group.Go(func() error {
		return that.play(groupCtx, grid, resultChannel)
	})

	err = group.Wait()
	if err != nil && !errors.Is(err, errGameOver) {
		return "", err
	}

	outcome, decided := that.result()
	if !decided {
		// the parent context was cancelled, e.g. by a signal
		outcome = OutcomeAborted
	}

	log.Info("game finished", "outcome", outcome)

	return outcome, nil
}

// handshake builds the card and returns the settings channel this session holds.
func (that *Session) handshake(ctx context.Context) (*entity.Card, repository.SettingsChannel, error) {
	log := that.logger.With("method", "handshake")

	if !that.opts.JoinOnly {
		// the word pool is validated before any channel exists
		card, err := that.newCard(that.opts.Settings)
		if err != nil {
			return nil, nil, err
		}

		channel, err := that.settingsRepo.CreateExclusive(ctx, that.opts.GameName)
		switch {
		case err == nil:
			// results of an earlier game under this name must not leak into this one
			if err = that.resultRepo.Reset(ctx, that.opts.GameName); err != nil {
				that.cleanup(ctx, "settings channel", channel.Close)
				return nil, nil, fmt.Errorf("failed to reset result channel: %w", err)
			}

			if err = channel.SendOnce(ctx, that.opts.Settings); err != nil {
				that.cleanup(ctx, "settings channel", channel.Close)
				return nil, nil, fmt.Errorf("failed to publish settings: %w", err)
			}

			log.Info("hosting game", "xaxis", that.opts.Settings.XAxis, "yaxis", that.opts.Settings.YAxis)
			that.console.Info("Game created. Waiting for players...")

			return card, channel, nil
		case !errors.Is(err, apperror.ErrAlreadyExists):
			return nil, nil, fmt.Errorf("failed to create game: %w", err)
		}

		log.Info("game already exists, joining")
		that.console.Info("Game already running. Joining the existing game.")
	}

	channel, err := that.settingsRepo.OpenExisting(ctx, that.opts.GameName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to join game: %w", err)
	}

	that.setState(StateAwaitingSettings)

	settings, err := channel.ReceiveOnce(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to receive settings: %w", err)
	}

	log.Info("settings received", "xaxis", settings.XAxis, "yaxis", settings.YAxis, "word_source", settings.WordSource)

	card, err := that.newCard(settings)
	if err != nil {
		return nil, nil, err
	}

	return card, channel, nil
}

func (that *Session) newCard(settings entity.GameSettings) (*entity.Card, error) {
	words, err := that.opts.LoadWords(settings.WordSource)
	if err != nil {
		return nil, fmt.Errorf("failed to load words: %w", err)
	}

	card, err := entity.NewCard(words, settings.XAxis, settings.YAxis, that.opts.Rand)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	return card, nil
}

// play runs the interactive command loop until the card wins or the player quits.
func (that *Session) play(ctx context.Context, grid *entity.MarkGrid, channel repository.ResultChannel) error {
	log := that.logger.With("method", "play")

	lines := make(chan string)
	go readLines(ctx, that.opts.Input, lines)

	for {
		that.console.Prompt("Mark a buzzword: ")

		var line string
		select {
		case <-ctx.Done():
			return nil
		case next, ok := <-lines:
			if !ok {
				log.Info("input closed")
				that.decide(OutcomeAborted)
				return errGameOver
			}
			line = next
		}

		cmd := parseCommand(line)
		if cmd.kind == commandNone {
			continue
		}

		if cmd.kind == commandExit {
			log.Info("player left the game")
			that.decide(OutcomeAborted)
			return errGameOver
		}

		if err := that.apply(grid, cmd); err != nil {
			that.console.Info(err.Error())
			continue
		}

		that.console.RenderCard(grid.Card(), grid.Snapshot())

		if !grid.IsWinning() {
			continue
		}

		// a foreign victory that arrived first decides the game
		if !that.decide(OutcomeWon) {
			return nil
		}

		that.console.Announce("Bingo! You win!")

		if err := channel.Post(ctx, entity.NewVictory(that.opts.Player)); err != nil {
			return fmt.Errorf("failed to announce victory: %w", err)
		}

		log.Info("victory announced")

		return errGameOver
	}
}

func (that *Session) apply(grid *entity.MarkGrid, cmd command) error {
	log := that.logger.With("method", "apply")

	switch cmd.kind {
	case commandMarkAt, commandUnmarkAt:
		var (
			word string
			err  error
		)
		if cmd.kind == commandMarkAt {
			word, err = grid.MarkAt(cmd.row, cmd.col)
		} else {
			word, err = grid.UnmarkAt(cmd.row, cmd.col)
		}
		if err != nil {
			return fmt.Errorf("no such cell %d,%d", cmd.row, cmd.col)
		}

		log.Debug("cell changed", "row", cmd.row, "col", cmd.col, "word", word, "marked", cmd.kind == commandMarkAt)
	case commandMark:
		if grid.Mark(cmd.word) == 0 {
			return fmt.Errorf("%q is not on your card", cmd.word)
		}

		log.Debug("word marked", "word", cmd.word)
	case commandUnmark:
		if grid.Unmark(cmd.word) == 0 {
			return fmt.Errorf("%q cannot be unmarked", cmd.word)
		}

		log.Debug("word unmarked", "word", cmd.word)
	}

	return nil
}

// decide records the first terminal outcome and reports whether it was this one.
func (that *Session) decide(outcome Outcome) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.decided {
		return false
	}

	that.decided = true
	that.outcome = outcome

	switch outcome {
	case OutcomeWon:
		that.state = StateWon
	case OutcomeLost:
		that.state = StateLost
	case OutcomeAborted:
	}

	return true
}

func (that *Session) result() (Outcome, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.outcome, that.decided
}

func (that *Session) setState(state State) {
	that.mu.Lock()
	that.state = state
	that.mu.Unlock()

	that.logger.Debug("state changed", "state", state)
}

// cleanup runs a channel teardown even when ctx is already cancelled.
func (that *Session) cleanup(ctx context.Context, what string, teardown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := teardown(ctx); err != nil {
		that.logger.Error("cleanup failed", "channel", what, "error", err)
	}
}

// readLines feeds input lines into out and closes it at EOF. A read that is
// still blocked when the session ends is abandoned; the process exit ends it.
func readLines(ctx context.Context, input io.Reader, out chan<- string) {
	defer close(out)

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		select {
		case out <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

type commandKind int

const (
	commandNone commandKind = iota
	commandMark
	commandUnmark
	commandMarkAt
	commandUnmarkAt
	commandExit
)

type command struct {
	kind     commandKind
	word     string
	row, col int
}

// parseCommand understands "<word>", "mark <word>", "unmark <word>",
// "<row>,<col>", "unmark <row>,<col>" and "exit".
func parseCommand(line string) command {
	line = strings.TrimSpace(line)

	switch strings.ToLower(line) {
	case "":
		return command{kind: commandNone}
	case "exit", "quit":
		return command{kind: commandExit}
	}

	kind, atKind, rest := commandMark, commandMarkAt, line
	if verb, arg, ok := strings.Cut(line, " "); ok {
		switch strings.ToLower(verb) {
		case "mark":
			rest = strings.TrimSpace(arg)
		case "unmark":
			kind, atKind, rest = commandUnmark, commandUnmarkAt, strings.TrimSpace(arg)
		}
	}

	if row, col, ok := parseCell(rest); ok {
		return command{kind: atKind, row: row, col: col}
	}

	return command{kind: kind, word: rest}
}

func parseCell(value string) (int, int, bool) {
	rawRow, rawCol, ok := strings.Cut(value, ",")
	if !ok {
		return 0, 0, false
	}

	row, err := strconv.Atoi(strings.TrimSpace(rawRow))
	if err != nil {
		return 0, 0, false
	}

	col, err := strconv.Atoi(strings.TrimSpace(rawCol))
	if err != nil {
		return 0, 0, false
	}

	return row, col, true
}

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	app "github.com/rocketscienceinc/buzzword-bingo/internal"
	"github.com/rocketscienceinc/buzzword-bingo/internal/config"
	"github.com/rocketscienceinc/buzzword-bingo/internal/usecase"
)

type flags struct {
	configPath string
	name       string
	game       string
	xaxis      int
	yaxis      int
	words      string
	redisHost  string
	redisPort  string
	logLevel   string
	logFile    string
}

func newCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bingo",
		Short:         "Buzzword bingo for two players, coordinated through named channels.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
	}

	cmd.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	pf := cmd.PersistentFlags()

	pf.StringVarP(&f.configPath, "config", "c", "config.yml", "path to the config file")
	pf.StringVarP(&f.name, "name", "n", defaultPlayerName(), "your display name")
	pf.StringVarP(&f.game, "game", "g", "", "name of the game to create or join (env: BINGO_GAME)")
	pf.IntVarP(&f.xaxis, "xaxis", "x", 0, "number of columns on the card (env: BINGO_XAXIS)")
	pf.IntVarP(&f.yaxis, "yaxis", "y", 0, "number of rows on the card (env: BINGO_YAXIS)")
	pf.StringVarP(&f.words, "words", "w", "", "word file, one word per line, or \"builtin\" (env: BINGO_WORDS)")
	pf.StringVar(&f.redisHost, "redis-host", "", "redis host (env: BINGO_REDIS_HOST)")
	pf.StringVar(&f.redisPort, "redis-port", "", "redis port (env: BINGO_REDIS_PORT)")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (env: BINGO_LOG_LEVEL)")
	pf.StringVar(&f.logFile, "log-file", "", "log file, \"-\" for stderr (env: BINGO_LOG_FILE)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Create a game, or join it if it is already running",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return play(cmd, f, false)
			},
		},
		&cobra.Command{
			Use:   "join",
			Short: "Join a running game",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return play(cmd, f, true)
			},
		},
	)

	return cmd
}

func play(cmd *cobra.Command, f *flags, joinOnly bool) error {
	conf, err := loadConfig(cmd.Flags(), f)
	if err != nil {
		return err
	}

	logger, closeLog, err := initLogger(conf)
	if err != nil {
		return err
	}
	defer closeLog()

	outcome, err := app.RunApp(logger, conf, app.RunOptions{
		PlayerName: f.name,
		JoinOnly:   joinOnly,
		Input:      cmd.InOrStdin(),
		Output:     cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	if outcome == usecase.OutcomeAborted {
		fmt.Fprintln(cmd.OutOrStdout(), "Left the game.")
	}

	return nil
}

// loadConfig reads file and environment, then applies flags that were set explicitly.
func loadConfig(fs *pflag.FlagSet, f *flags) (*config.Config, error) {
	conf, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	if fs.Changed("game") {
		conf.Game.Name = f.game
	}
	if fs.Changed("xaxis") {
		conf.Game.XAxis = f.xaxis
	}
	if fs.Changed("yaxis") {
		conf.Game.YAxis = f.yaxis
	}
	if fs.Changed("words") {
		conf.Game.WordSource = f.words
	}
	if fs.Changed("redis-host") {
		conf.Redis.Host = f.redisHost
	}
	if fs.Changed("redis-port") {
		conf.Redis.Port = f.redisPort
	}
	if fs.Changed("log-level") {
		conf.LogLevel = f.logLevel
	}
	if fs.Changed("log-file") {
		conf.LogFile = f.logFile
	}

	if err = conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

// initLogger writes JSON logs to the configured file, or to stderr for "-".
func initLogger(conf *config.Config) (*slog.Logger, func(), error) {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var (
		out     io.Writer = os.Stderr
		closeFn           = func() {}
	)

	if conf.LogFile != "" && conf.LogFile != "-" {
		file, err := os.OpenFile(filepath.Clean(conf.LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open log file: %w", err)
		}
		out = file
		closeFn = func() { _ = file.Close() }
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), closeFn, nil
}

func defaultPlayerName() string {
	if name := os.Getenv("USER"); name != "" {
		return name
	}

	return "player"
}

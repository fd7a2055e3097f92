package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	LogLevel string `yaml:"log-level" env:"BINGO_LOG_LEVEL" env-default:"info"`
	LogFile  string `yaml:"log-file" env:"BINGO_LOG_FILE" env-default:"bingo.log"`
	Redis    Redis  `yaml:"redis"`
	Game     Game   `yaml:"game"`
}

type Redis struct {
	Host     string `yaml:"host" env:"BINGO_REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"BINGO_REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"BINGO_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"BINGO_REDIS_DB" env-default:"0"`
}

type Game struct {
	Name       string `yaml:"name" env:"BINGO_GAME" env-default:"buzzword-bingo"`
	XAxis      int    `yaml:"xaxis" env:"BINGO_XAXIS" env-default:"5"`
	YAxis      int    `yaml:"yaxis" env:"BINGO_YAXIS" env-default:"5"`
	WordSource string `yaml:"words" env:"BINGO_WORDS" env-default:"builtin"`

	QueueDepth   int           `yaml:"queue-depth" env:"BINGO_QUEUE_DEPTH" env-default:"10"`
	ChannelTTL   time.Duration `yaml:"channel-ttl" env:"BINGO_CHANNEL_TTL" env-default:"1h"`
	BlockTimeout time.Duration `yaml:"block-timeout" env:"BINGO_BLOCK_TIMEOUT" env-default:"500ms"`
}

// Load reads the config file at path when it exists and the environment otherwise.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if _, statErr := os.Stat(path); path != "" && statErr == nil {
		err = cleanenv.ReadConfig(path, config)
	} else {
		err = cleanenv.ReadEnv(config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, that.LogLevel)
	}

	if that.Game.Name == "" {
		return fmt.Errorf("%w: game name is empty", ErrInvalidConfig)
	}

	if that.Game.XAxis < 1 || that.Game.YAxis < 1 {
		return fmt.Errorf("%w: card must be at least 1x1, got %dx%d", ErrInvalidConfig, that.Game.XAxis, that.Game.YAxis)
	}

	if that.Game.QueueDepth < 1 {
		return fmt.Errorf("%w: queue depth must be positive", ErrInvalidConfig)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

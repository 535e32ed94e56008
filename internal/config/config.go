package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	LogLevel   string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Store      string        `yaml:"store" env:"STORE" env-default:"memory"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"24h"`
	Redis      Redis         `yaml:"redis"`
	Postgres   Postgres      `yaml:"postgres"`
	Games      Games         `yaml:"games"`
	Drive      Drive         `yaml:"drive"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Postgres - game history is disabled while DSN is empty.
type Postgres struct {
	DSN string `yaml:"dsn" env:"POSTGRES_DSN" env-default:""`
}

type Games struct {
	ConnectFourMaxDepth  int `yaml:"connect-four-max-depth" env:"CONNECT_FOUR_MAX_DEPTH" env-default:"8"`
	HangmanAllowedWrongs int `yaml:"hangman-allowed-wrongs" env:"HANGMAN_ALLOWED_WRONGS" env-default:"9"`
}

// Drive - the drive browser is registered only when Root is set.
type Drive struct {
	Root    string `yaml:"root" env:"DRIVE_ROOT" env-default:""`
	BaseURL string `yaml:"base-url" env:"DRIVE_BASE_URL" env-default:""`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the file at path, environment variables take precedence.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	if that.Store != StoreMemory && that.Store != StoreRedis {
		return fmt.Errorf("unknown store %q, expected %s or %s", that.Store, StoreMemory, StoreRedis)
	}

	if that.SessionTTL < 0 {
		return fmt.Errorf("session-ttl must not be negative, got %s", that.SessionTTL)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

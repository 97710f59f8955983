package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"ctchen222/roomserver/internal/validator"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	HTTP      HTTP      `yaml:"http"`
	Session   Session   `yaml:"session"`
	Hub       Hub       `yaml:"hub"`
	Identity  Identity  `yaml:"identity"`
	Redis     Redis     `yaml:"redis"`
	Archive   Archive   `yaml:"archive"`
	Telemetry Telemetry `yaml:"telemetry"`
	Events    Events    `yaml:"events"`
}

type HTTP struct {
	Addr string `yaml:"addr" env:"HTTP_ADDR" env-default:":3000" validate:"required"`
	Path string `yaml:"path" env:"HTTP_WS_PATH" env-default:"/ws" validate:"required,startswith=/"`
}

type Session struct {
	PingInterval    time.Duration `yaml:"ping-interval" env:"SESSION_PING_INTERVAL" env-default:"5s" validate:"gt=0"`
	LivenessTimeout time.Duration `yaml:"liveness-timeout" env:"SESSION_LIVENESS_TIMEOUT" env-default:"10s" validate:"gtfield=PingInterval"`
	WriteWait       time.Duration `yaml:"write-wait" env:"SESSION_WRITE_WAIT" env-default:"10s" validate:"gt=0"`
	SendBuffer      int           `yaml:"send-buffer" env:"SESSION_SEND_BUFFER" env-default:"32" validate:"min=1"`
	MaxMessageSize  int64         `yaml:"max-message-size" env:"SESSION_MAX_MESSAGE_SIZE" env-default:"4096" validate:"min=64"`
}

type Hub struct {
	InboxSize int `yaml:"inbox-size" env:"HUB_INBOX_SIZE" env-default:"256" validate:"min=1"`
}

type Identity struct {
	JWTSecret        string        `yaml:"jwt-secret" env:"IDENTITY_JWT_SECRET" validate:"required_unless=AllowGuests true"`
	AllowGuests      bool          `yaml:"allow-guests" env:"IDENTITY_ALLOW_GUESTS" env-default:"true"`
	MaxTokenLifetime time.Duration `yaml:"max-token-lifetime" env:"IDENTITY_MAX_TOKEN_LIFETIME" env-default:"0s" validate:"min=0"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost" validate:"required_if=Enabled true"`
	Port    int    `yaml:"port" env:"REDIS_PORT" env-default:"6379" validate:"min=1,max=65535"`
	Channel string `yaml:"channel" env:"REDIS_CHANNEL" env-default:"channel:events" validate:"required_if=Enabled true"`
}

type Archive struct {
	Enabled bool   `yaml:"enabled" env:"ARCHIVE_ENABLED" env-default:"false"`
	Path    string `yaml:"path" env:"ARCHIVE_PATH" env-default:"./rooms.db" validate:"required_if=Enabled true"`
}

type Telemetry struct {
	Enabled     bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_ENDPOINT" env-default:"otel-collector:4317" validate:"required_if=Enabled true"`
	ServiceName string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"roomserver" validate:"required"`
	Stdout      bool   `yaml:"stdout" env:"OTEL_STDOUT" env-default:"false"`
}

type Events struct {
	QueueSize int `yaml:"queue-size" env:"EVENTS_QUEUE_SIZE" env-default:"128" validate:"min=1"`
}

// Load reads the configuration from the yaml file at path, overlaid with
// environment variables. With an empty path only the environment is used.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints that cleanenv cannot express.
func (c *Config) Validate() error {
	if err := validator.Check(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr returns the redis address in host:port form.
func (r Redis) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// Usage describes the environment variables Load understands.
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return desc
}

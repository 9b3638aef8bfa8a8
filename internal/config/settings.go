package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Settings — настройки процесса из переменных окружения.
type Settings struct {
	// AWSRegion — регион для capability S3/STS.
	AWSRegion string `env:"AWS_REGION"`

	// AWSEndpoint — нестандартный endpoint AWS (LocalStack, MinIO).
	AWSEndpoint string `env:"AWS_ENDPOINT_URL"`

	// DatabaseURL — Postgres для capability Postgres и журнала runs.
	DatabaseURL string `env:"DB_URL"`

	// RabbitURL — RabbitMQ для capability AMQP и событий run.
	RabbitURL string `env:"RABBITMQ_URL"`

	// LogLevel — DEBUG, INFO, WARN, ERROR.
	LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`

	// LogFormat — text или json.
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// NoColor — любое непустое значение отключает цвета в логах.
	NoColor string `env:"NO_COLOR"`

	// CallTimeout — таймаут одного вызова capability.
	CallTimeout time.Duration `env:"INVOKER_CALL_TIMEOUT" envDefault:"5m"`

	// PushgatewayURL — адрес Pushgateway. Если пусто, метрики не отправляются.
	PushgatewayURL string `env:"INVOKER_PUSHGATEWAY_URL"`

	// PushJob — имя job в Pushgateway.
	PushJob string `env:"INVOKER_PUSH_JOB" envDefault:"invoker"`
}

// Load читает настройки из окружения процесса.
func Load() (*Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFrom читает настройки из заданного набора переменных.
func LoadFrom(vars Vars) (*Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate проверяет значения настроек.
func (s *Settings) Validate() error {
	if s.CallTimeout <= 0 {
		return fmt.Errorf("%w: INVOKER_CALL_TIMEOUT must be positive, got %s", ErrInvalidSettings, s.CallTimeout)
	}
	switch s.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: LOG_FORMAT must be text or json, got %q", ErrInvalidSettings, s.LogFormat)
	}
	return nil
}

// Color возвращает true, если цвета в логах разрешены.
func (s *Settings) Color() bool {
	return s.NoColor == ""
}

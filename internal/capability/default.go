package capability

import (
	"context"
	"log/slog"
)

// Config — настройки стандартного набора capability.
type Config struct {
	// AWS — регион и endpoint для S3, STS и Lambda.
	AWS AWSConfig

	// DatabaseURL — DSN для Postgres (default: repo.DefaultDSN).
	DatabaseURL string

	// RabbitURL — URL брокера для AMQP (default: mq.DefaultURL()).
	RabbitURL string

	// Logger — логгер (default: slog.Default()).
	Logger *slog.Logger
}

// Default создаёт реестр со всеми стандартными семействами:
// S3, STS, Lambda, HTTP, Postgres, AMQP, Delay.
//
// Соединения с БД и брокером открываются при первом вызове.
// Реестр нужно закрыть через Close.
func Default(ctx context.Context, cfg Config) (*Registry, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	r := NewRegistry()

	if err := RegisterAWS(ctx, r, cfg.AWS); err != nil {
		return nil, err
	}
	NewHTTP(nil).Register(r)
	NewPostgres(cfg.DatabaseURL).Register(r)
	NewAMQP(cfg.RabbitURL, cfg.Logger).Register(r)
	RegisterDelay(r)

	cfg.Logger.Debug("capabilities registered",
		"families", r.Families(),
		"count", r.Count(),
	)
	return r, nil
}

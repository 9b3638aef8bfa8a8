package cli

import (
	"log/slog"

	"github.com/shaiso/invoker/internal/capability"
	"github.com/shaiso/invoker/internal/config"
	"github.com/shaiso/invoker/internal/telemetry"
)

// GlobalOptions — persistent-флаги корневой команды.
type GlobalOptions struct {
	JSON      bool
	EnvFiles  []string
	Vars      string
	LogLevel  string
	LogFormat string
}

// Env — окружение одной команды CLI.
type Env struct {
	// Settings — настройки процесса.
	Settings *config.Settings

	// Vars — переменные для директив {%NAME%}: окружение процесса,
	// .env файлы и --vars.
	Vars config.Vars

	// Logger
	Logger *slog.Logger
}

// LoadEnv собирает Env из флагов и окружения.
//
// Настройки читаются из того же объединённого набора, что и
// переменные директив, поэтому DB_URL можно задать в .env файле.
func LoadEnv(opts *GlobalOptions) (*Env, error) {
	vars, err := config.Environment(opts.EnvFiles, opts.Vars)
	if err != nil {
		return nil, err
	}

	settings, err := config.LoadFrom(vars)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		settings.LogFormat = opts.LogFormat
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logger := telemetry.SetupLogger(telemetry.LogOptions{
		Level:   settings.LogLevel,
		Format:  settings.LogFormat,
		NoColor: !settings.Color(),
	})

	return &Env{
		Settings: settings,
		Vars:     vars,
		Logger:   logger,
	}, nil
}

// CapabilityConfig возвращает настройки стандартного набора capability.
func (e *Env) CapabilityConfig() capability.Config {
	return capability.Config{
		AWS: capability.AWSConfig{
			Region:   e.Settings.AWSRegion,
			Endpoint: e.Settings.AWSEndpoint,
		},
		DatabaseURL: e.Settings.DatabaseURL,
		RabbitURL:   e.Settings.RabbitURL,
		Logger:      e.Logger,
	}
}

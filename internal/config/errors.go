package config

import "errors"

// Ошибки конфигурации.
var (
	// ErrInvalidSettings — настройки окружения некорректны.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrInvalidVar — некорректная inline переменная.
	ErrInvalidVar = errors.New("invalid inline var")
)

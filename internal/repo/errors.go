package repo

import "errors"

// Ошибки журнала.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrConnect — не удалось подключиться к БД.
	ErrConnect = errors.New("database connection failed")
)

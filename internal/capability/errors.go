package capability

import (
	"errors"
	"fmt"
)

// Ошибки capability.
var (
	// ErrCapabilityNotFound — пара objectType/method не зарегистрирована.
	ErrCapabilityNotFound = errors.New("capability not found")

	// ErrInvalidParams — параметры не подходят для вызова.
	ErrInvalidParams = errors.New("invalid capability params")

	// ErrVersionMismatch — apiVersions файла команд не совпадает с версией семейства.
	ErrVersionMismatch = errors.New("api version mismatch")

	// ErrCancelled — вызов прерван отменой контекста или таймаутом.
	ErrCancelled = errors.New("capability call cancelled")

	// ErrUnavailable — внешняя система (БД, брокер) недоступна.
	ErrUnavailable = errors.New("capability backend unavailable")

	// ErrResponseTooLarge — тело ответа HTTP превышает лимит.
	ErrResponseTooLarge = errors.New("response body too large")
)

// APIError — ошибка, которую вернул удалённый API (AWS).
type APIError struct {
	Service   string // сервис, например "S3"
	Operation string // операция, например "PutObject"
	Code      string // код ошибки сервиса, например "NoSuchBucket"
	Message   string // сообщение сервиса
	Err       error  // исходная ошибка SDK
}

// Error реализует интерфейс error.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: %s", e.Service, e.Operation, e.Code)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Service, e.Operation, e.Code, e.Message)
}

// Unwrap возвращает исходную ошибку.
func (e *APIError) Unwrap() error {
	return e.Err
}

// HTTPError — ответ HTTP со статусом >= 400.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error реализует интерфейс error.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// IsHTTPError проверяет, является ли ошибка HTTP ошибкой.
func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

func invalidParams(family, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParams, family, fmt.Sprintf(format, args...))
}

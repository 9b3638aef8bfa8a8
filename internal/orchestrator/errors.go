package orchestrator

import (
	"errors"
	"fmt"
	"strings"
)

// Ошибки оркестратора.
var (
	// ErrNoInvoker — оркестратор создан без Invoker.
	ErrNoInvoker = errors.New("orchestrator has no invoker")

	// ErrCallTimeout — вызов не завершился за CallTimeout.
	ErrCallTimeout = errors.New("capability call timed out")

	// ErrRunCancelled — run прерван отменой контекста.
	ErrRunCancelled = errors.New("run cancelled")

	// ErrExpectationFailed — результат не совпал с expectedResults.
	ErrExpectationFailed = errors.New("expectation failed")
)

// Stage — этап выполнения команды.
type Stage string

// Этапы выполнения команды.
const (
	StageResolve Stage = "resolve"
	StageInvoke  Stage = "invoke"
	StagePublish Stage = "publish"
	StageExpect  Stage = "expect"
)

// CommandError — ошибка одной команды с её позицией и этапом.
type CommandError struct {
	Index      int    // позиция команды в списке
	ResultsID  string // resultsID команды, может быть пустым
	Capability string // "ObjectType.Method"
	Stage      Stage  // этап, на котором команда упала
	Err        error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command %d (%s) %s: %v", e.Index, e.Capability, e.Stage, e.Err)
}

// Unwrap возвращает базовую ошибку.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// Mismatch — одно несовпавшее свойство.
type Mismatch struct {
	Property string `json:"property"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// ExpectationError — результат не совпал с ожидаемыми свойствами.
type ExpectationError struct {
	Mismatches []Mismatch
}

// Error реализует интерфейс error.
func (e *ExpectationError) Error() string {
	parts := make([]string, len(e.Mismatches))
	for i, m := range e.Mismatches {
		parts[i] = fmt.Sprintf("%s: expected %s, got %s", m.Property, m.Expected, m.Actual)
	}
	return "expectation failed: " + strings.Join(parts, "; ")
}

// Unwrap возвращает ErrExpectationFailed.
func (e *ExpectationError) Unwrap() error {
	return ErrExpectationFailed
}

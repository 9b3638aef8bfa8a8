package engine

import (
	"errors"
	"fmt"
)

// Ошибки разрешения директив.
var (
	// ErrMalformedDirective — текст между { и } не является директивой.
	ErrMalformedDirective = errors.New("malformed directive")

	// ErrEnvNotSet — переменная окружения не задана.
	ErrEnvNotSet = errors.New("environment variable not set")

	// ErrResultNotFound — resultsID ещё не опубликован.
	ErrResultNotFound = errors.New("result not published")

	// ErrFieldNotFound — в результате нет такого свойства.
	ErrFieldNotFound = errors.New("field not found")

	// ErrNotAList — свойство с [N] или [$K$V] не является массивом.
	ErrNotAList = errors.New("value is not a list")

	// ErrNotAnObject — значение не является объектом.
	ErrNotAnObject = errors.New("value is not an object")

	// ErrIndexOutOfRange — индекс за пределами массива.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidIndex — индекс не является десятичным целым.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrNoKeyMatch — ни один элемент не совпал по ключу/значению.
	ErrNoKeyMatch = errors.New("no element matches key/value")

	// ErrDuplicateResultsID — resultsID уже опубликован.
	ErrDuplicateResultsID = errors.New("results id already published")
)

// Ошибки бинарной подстановки.
var (
	// ErrPayloadFile — файл для бинарной подстановки не найден или не читается.
	ErrPayloadFile = errors.New("payload file unavailable")

	// ErrEmptyPayload — в <...> нет ни одного пути.
	ErrEmptyPayload = errors.New("payload has no paths")
)

// Ошибки валидации файла команд.
var (
	// ErrEmptyCommands — файл не содержит команд.
	ErrEmptyCommands = errors.New("command file has no commands")

	// ErrEmptyObjectType — у команды не указан objectType.
	ErrEmptyObjectType = errors.New("command has empty objectType")

	// ErrEmptyMethod — у команды не указан method.
	ErrEmptyMethod = errors.New("command has empty method")

	// ErrForwardReference — директива ссылается на результат, который
	// не публикуется ни одной предыдущей командой.
	ErrForwardReference = errors.New("reference to result not published by an earlier command")

	// ErrUnsupportedFormat — неизвестное расширение файла команд.
	ErrUnsupportedFormat = errors.New("unsupported command file format")

	// ErrParse — файл команд не разбирается.
	ErrParse = errors.New("command file parse failed")
)

// DirectiveError — ошибка разбора одной директивы.
type DirectiveError struct {
	Raw    string // исходный текст директивы вместе с маркерами
	Reason string // что именно не так
	Err    error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *DirectiveError) Error() string {
	return fmt.Sprintf("directive %q: %s", e.Raw, e.Reason)
}

// Unwrap возвращает базовую ошибку.
func (e *DirectiveError) Unwrap() error {
	return e.Err
}

func malformed(raw, reason string) *DirectiveError {
	return &DirectiveError{Raw: raw, Reason: reason, Err: ErrMalformedDirective}
}

// ResolveError — ошибка разрешения с путём до параметра.
type ResolveError struct {
	Path string // путь до параметра: "Code.ZipFile", "Tags[2].Value"
	Err  error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ResolveError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return "param " + e.Path + ": " + e.Err.Error()
}

// Unwrap возвращает базовую ошибку.
func (e *ResolveError) Unwrap() error {
	return e.Err
}

// IsResourceError возвращает true для ошибок чтения локальных файлов.
func IsResourceError(err error) bool {
	return errors.Is(err, ErrPayloadFile)
}

// ValidationError — ошибка статической проверки файла команд.
type ValidationError struct {
	Index   int    // позиция команды; -1, если ошибка относится к файлу целиком
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("command %d: %s", e.Index, e.Message)
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError создаёт новую ошибку валидации.
func NewValidationError(index int, field, message string, err error) *ValidationError {
	return &ValidationError{
		Index:   index,
		Field:   field,
		Message: message,
		Err:     err,
	}
}

package orchestrator

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/gowebpki/jcs"
)

// missing — значение Actual для свойства, которого нет в результате.
const missing = "<missing>"

// CheckExpectations сравнивает свойства результата с ожидаемыми.
//
// Сравниваются канонические JSON формы (RFC 8785): порядок ключей,
// пробелы и запись чисел (5 и 5.0) на результат не влияют.
// Свойства, не названные в expected, не проверяются. Отсутствующее
// свойство — всегда несовпадение.
func CheckExpectations(expected, actual map[string]any) error {
	if len(expected) == 0 {
		return nil
	}

	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	var mismatches []Mismatch
	for _, name := range names {
		want, err := canonical(expected[name])
		if err != nil {
			return fmt.Errorf("canonicalize expected %s: %w", name, err)
		}

		value, ok := actual[name]
		if !ok {
			mismatches = append(mismatches, Mismatch{Property: name, Expected: want, Actual: missing})
			continue
		}

		got, err := canonical(value)
		if err != nil {
			return fmt.Errorf("canonicalize actual %s: %w", name, err)
		}
		if got != want {
			mismatches = append(mismatches, Mismatch{Property: name, Expected: want, Actual: got})
		}
	}

	if len(mismatches) > 0 {
		return &ExpectationError{Mismatches: mismatches}
	}
	return nil
}

// canonical возвращает каноническую JSON форму значения.
// Канонизатор принимает только объект или массив, поэтому значение
// оборачивается в массив из одного элемента и разворачивается обратно.
func canonical(v any) (string, error) {
	data, err := json.Marshal([]any{v})
	if err != nil {
		return "", err
	}
	out, err := jcs.Transform(data)
	if err != nil {
		return "", err
	}
	return string(out[1 : len(out)-1]), nil
}

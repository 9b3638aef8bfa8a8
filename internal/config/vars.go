package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Vars — набор переменных name -> value.
type Vars map[string]string

// FromOS собирает Vars из окружения процесса.
func FromOS() Vars {
	out := make(Vars)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[name] = value
	}
	return out
}

// Merge объединяет наборы; более поздние перекрывают ранние.
func Merge(sets ...Vars) Vars {
	out := make(Vars)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// LoadEnvFile читает один .env файл.
func LoadEnvFile(path string) (Vars, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	parsed, err := godotenv.Parse(f)
	if err != nil {
		return nil, err
	}
	return Vars(parsed), nil
}

// LoadEnvFiles читает несколько .env файлов по порядку.
func LoadEnvFiles(paths []string) (Vars, error) {
	result := make(Vars)
	for _, path := range paths {
		if path == "" {
			continue
		}
		vars, err := LoadEnvFile(path)
		if err != nil {
			return nil, fmt.Errorf("load env file %q: %w", path, err)
		}
		result = Merge(result, vars)
	}
	return result, nil
}

// ParseInlineVars разбирает список "A=1,B=2".
func ParseInlineVars(s string) (Vars, error) {
	out := make(Vars)
	if strings.TrimSpace(s) == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w %q, expected key=value", ErrInvalidVar, part)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, fmt.Errorf("%w %q: empty key", ErrInvalidVar, part)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}

// Lookup возвращает функцию поиска переменной по набору.
// Подходит как источник окружения для engine.WithEnv.
func (v Vars) Lookup() func(name string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := v[name]
		return value, ok
	}
}

// Environment собирает окружение для директив: процесс, затем
// .env файлы, затем inline переменные. Окружение процесса не меняется.
func Environment(envFiles []string, inline string) (Vars, error) {
	files, err := LoadEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}
	vars, err := ParseInlineVars(inline)
	if err != nil {
		return nil, err
	}
	return Merge(FromOS(), files, vars), nil
}

package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/shaiso/invoker/internal/domain"
)

// Format — формат файла команд.
type Format string

// Поддерживаемые форматы.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath определяет формат по расширению файла.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// LoadCommandFile читает и разбирает файл команд.
func LoadCommandFile(path string) (*domain.CommandFile, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read command file: %w", err)
	}

	return ParseCommandFile(data, format)
}

// ParseCommandFile разбирает файл команд из байтов.
//
// Числа в JSON сохраняются как json.Number, чтобы большие целые
// не теряли точность по пути в capability.
func ParseCommandFile(data []byte, format Format) (*domain.CommandFile, error) {
	var file domain.CommandFile

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return &file, nil
}

// Validate выполняет статическую проверку файла команд и возвращает
// первую найденную ошибку.
func Validate(file *domain.CommandFile) error {
	if errs := Check(file); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Check возвращает все ошибки статической проверки:
//   - пустой список команд
//   - пустые objectType / method
//   - повторяющиеся resultsID
//   - некорректные директивы
//   - ссылки на resultsID, которые не публикуются ни одной предыдущей командой
func Check(file *domain.CommandFile) []*ValidationError {
	if file == nil || len(file.Commands) == 0 {
		return []*ValidationError{
			NewValidationError(-1, "commands", "command file has no commands", ErrEmptyCommands),
		}
	}

	var errs []*ValidationError
	published := make(map[string]bool)

	for i := range file.Commands {
		cmd := &file.Commands[i]

		if cmd.ObjectType == "" {
			errs = append(errs, NewValidationError(i, "objectType",
				"command has empty objectType", ErrEmptyObjectType))
		}
		if cmd.Method == "" {
			errs = append(errs, NewValidationError(i, "method",
				"command has empty method", ErrEmptyMethod))
		}

		for _, ref := range collectDirectives(cmd.Params, "", i, &errs) {
			if ref.directive.IsReference() && !published[ref.directive.ResultsID] {
				errs = append(errs, NewValidationError(i, ref.path,
					fmt.Sprintf("%s references %q before it is published", ref.directive.Raw, ref.directive.ResultsID),
					ErrForwardReference))
			}
		}

		if cmd.ResultsID != "" {
			if published[cmd.ResultsID] {
				errs = append(errs, NewValidationError(i, "resultsID",
					fmt.Sprintf("duplicate resultsID: %s", cmd.ResultsID), ErrDuplicateResultsID))
			}
			published[cmd.ResultsID] = true
		}
	}

	return errs
}

type foundDirective struct {
	path      string
	directive Directive
}

// collectDirectives обходит дерево параметров в детерминированном порядке.
func collectDirectives(value any, path string, index int, errs *[]*ValidationError) []foundDirective {
	var out []foundDirective

	switch v := value.(type) {
	case string:
		dirs, err := Scan(v)
		if err != nil {
			*errs = append(*errs, NewValidationError(index, path, err.Error(), err))
			return nil
		}
		for _, d := range dirs {
			out = append(out, foundDirective{path: path, directive: d})
		}

	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, collectDirectives(v[k], keyPath(path, k), index, errs)...)
		}

	case []any:
		for i, item := range v {
			out = append(out, collectDirectives(item, indexPath(path, i), index, errs)...)
		}

	case []map[string]any:
		for i, item := range v {
			out = append(out, collectDirectives(item, indexPath(path, i), index, errs)...)
		}

	case []string:
		for i, item := range v {
			out = append(out, collectDirectives(item, indexPath(path, i), index, errs)...)
		}
	}

	return out
}

// Directives возвращает все директивы в параметрах команды.
func Directives(params map[string]any) ([]Directive, error) {
	var errs []*ValidationError
	found := collectDirectives(params, "", 0, &errs)
	if len(errs) > 0 {
		return nil, errs[0].Err
	}
	out := make([]Directive, len(found))
	for i, f := range found {
		out[i] = f.directive
	}
	return out, nil
}

package engine

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LookupFunc возвращает значение переменной окружения и признак её наличия.
type LookupFunc func(name string) (string, bool)

// Resolver разрешает директивы в дереве параметров команды.
//
// Для каждой строки по порядку:
//  1. подстановка переменных окружения ({%NAME%}, %NAME%)
//  2. подстановка ссылок на результаты ({ID.FIELD}, {ID.FIELD[N].SUB}, {ID.FIELD[$K$V].SUB})
//  3. бинарная подстановка (<file.zip>, <a.py|b.py>) — строка заменяется на []byte
//
// Подставленные значения повторно не сканируются.
//
// Любая неразрешённая директива — ошибка: пропавшая переменная окружения
// не превращается в текст "undefined".
type Resolver struct {
	lookupEnv LookupFunc
	baseDir   string
}

// Option настраивает Resolver.
type Option func(*Resolver)

// WithEnv задаёт источник переменных окружения (по умолчанию os.LookupEnv).
func WithEnv(lookup LookupFunc) Option {
	return func(r *Resolver) {
		if lookup != nil {
			r.lookupEnv = lookup
		}
	}
}

// WithBaseDir задаёт каталог, относительно которого читаются файлы
// бинарной подстановки (по умолчанию — рабочий каталог процесса).
func WithBaseDir(dir string) Option {
	return func(r *Resolver) {
		r.baseDir = dir
	}
}

// NewResolver создаёт Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve разрешает все директивы в params и возвращает новое дерево.
// Исходное дерево не изменяется.
func Resolve(params map[string]any, store *Store) (map[string]any, error) {
	return NewResolver().Resolve(params, store)
}

// Resolve разрешает все директивы в params и возвращает новое дерево.
func (r *Resolver) Resolve(params map[string]any, store *Store) (map[string]any, error) {
	if params == nil {
		return make(map[string]any), nil
	}
	if store == nil {
		store = NewStore()
	}

	resolved, err := r.resolveMap(params, store, "")
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// ResolveValue рекурсивно разрешает произвольное значение.
func (r *Resolver) ResolveValue(value any, store *Store) (any, error) {
	if store == nil {
		store = NewStore()
	}
	return r.resolveValue(value, store, "")
}

func (r *Resolver) resolveValue(value any, store *Store, path string) (any, error) {
	switch v := value.(type) {
	case string:
		resolved, err := r.ResolveString(v, store)
		if err != nil {
			return nil, &ResolveError{Path: path, Err: err}
		}
		return resolved, nil

	case map[string]any:
		return r.resolveMap(v, store, path)

	case []any:
		result := make([]any, len(v))
		for i, val := range v {
			resolved, err := r.resolveValue(val, store, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			result[i] = resolved
		}
		return result, nil

	case []map[string]any:
		result := make([]map[string]any, len(v))
		for i, val := range v {
			resolved, err := r.resolveMap(val, store, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			result[i] = resolved
		}
		return result, nil

	case map[string]string:
		result := make(map[string]any, len(v))
		for key, val := range v {
			resolved, err := r.resolveValue(val, store, keyPath(path, key))
			if err != nil {
				return nil, err
			}
			result[key] = resolved
		}
		return result, nil

	case []string:
		result := make([]any, len(v))
		for i, val := range v {
			resolved, err := r.resolveValue(val, store, indexPath(path, i))
			if err != nil {
				return nil, err
			}
			result[i] = resolved
		}
		return result, nil

	default:
		// Числа, bool, nil и []byte проходят как есть
		return value, nil
	}
}

func (r *Resolver) resolveMap(m map[string]any, store *Store, path string) (map[string]any, error) {
	result := make(map[string]any, len(m))
	for key, val := range m {
		resolved, err := r.resolveValue(val, store, keyPath(path, key))
		if err != nil {
			return nil, err
		}
		result[key] = resolved
	}
	return result, nil
}

// ResolveString разрешает одну строку.
// Возвращает string или []byte (после бинарной подстановки).
//
// Бинарная подстановка распознаётся по самому шаблону: строка целиком
// вида <...>. Пути внутри разрешаются по отдельности.
func (r *Resolver) ResolveString(s string, store *Store) (any, error) {
	if !strings.ContainsAny(s, "{%<") {
		return s, nil
	}
	if store == nil {
		store = NewStore()
	}

	payload, ok, err := ParsePayload(s)
	if err != nil {
		return nil, err
	}
	if ok {
		paths := make([]string, len(payload.Paths))
		for i, p := range payload.Paths {
			if paths[i], err = r.expand(p, store); err != nil {
				return nil, err
			}
		}
		payload.Paths = paths
		return r.loadPayload(payload)
	}

	expanded, err := r.expand(s, store)
	if err != nil {
		return nil, err
	}
	if isEscapedPayload(s) {
		return string(payloadStart) + expanded[2:], nil
	}
	return expanded, nil
}

// expand подставляет переменные окружения и ссылки на результаты.
// Ссылки ищутся только в литеральном тексте шаблона: значение
// переменной окружения вставляется как есть и повторно не сканируется.
func (r *Resolver) expand(s string, store *Store) (string, error) {
	var b strings.Builder
	for _, tok := range TokenizeEnv(s) {
		if tok.Kind == KindLiteral {
			text, err := r.expandRefs(tok.Text, store)
			if err != nil {
				return "", err
			}
			b.WriteString(text)
			continue
		}
		val, ok := r.lookupEnv(tok.Name)
		if !ok {
			return "", &DirectiveError{
				Raw:    tok.Raw,
				Reason: fmt.Sprintf("environment variable %s not set", tok.Name),
				Err:    ErrEnvNotSet,
			}
		}
		b.WriteString(val)
	}
	return b.String(), nil
}

// expandRefs подставляет ссылки на результаты.
// Подставленное значение не сканируется повторно.
func (r *Resolver) expandRefs(s string, store *Store) (string, error) {
	tokens, err := TokenizeRefs(s)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, tok := range tokens {
		if tok.Kind == KindLiteral {
			b.WriteString(tok.Text)
			continue
		}
		val, err := Lookup(tok, store)
		if err != nil {
			return "", &DirectiveError{Raw: tok.Raw, Reason: err.Error(), Err: err}
		}
		text, err := Stringify(val)
		if err != nil {
			return "", &DirectiveError{Raw: tok.Raw, Reason: err.Error(), Err: err}
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// Lookup возвращает значение, на которое указывает директива-ссылка.
func Lookup(d Directive, store *Store) (any, error) {
	result, ok := store.Lookup(d.ResultsID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, d.ResultsID)
	}

	val, err := member(result, d.Field, d.ResultsID)
	if err != nil {
		return nil, err
	}

	switch d.Kind {
	case KindResult:
		return val, nil

	case KindIndexed:
		list, ok := asList(val)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s is %T", ErrNotAList, d.ResultsID, d.Field, val)
		}
		if d.Index < 0 || d.Index >= len(list) {
			return nil, fmt.Errorf("%w: %s.%s[%d] (length %d)",
				ErrIndexOutOfRange, d.ResultsID, d.Field, d.Index, len(list))
		}
		return elementMember(list[d.Index], d.Sub, elementName(d))

	case KindKeyed:
		list, ok := asList(val)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s is %T", ErrNotAList, d.ResultsID, d.Field, val)
		}
		for _, item := range list {
			obj, ok := asObject(item)
			if !ok {
				continue
			}
			key, present := obj[d.Key]
			if !present || key == nil {
				continue
			}
			if text, err := Stringify(key); err == nil && text == d.Value {
				return member(obj, d.Sub, elementName(d))
			}
		}
		return nil, fmt.Errorf("%w: %s.%s[$%s$%s]",
			ErrNoKeyMatch, d.ResultsID, d.Field, d.Key, d.Value)

	default:
		return nil, malformed(d.Raw, "not a result reference")
	}
}

func member(obj map[string]any, name, owner string) (any, error) {
	val, ok := obj[name]
	if !ok || val == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrFieldNotFound, owner, name)
	}
	return val, nil
}

func elementMember(item any, name, owner string) (any, error) {
	obj, ok := asObject(item)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %T", ErrNotAnObject, owner, item)
	}
	return member(obj, name, owner)
}

func elementName(d Directive) string {
	if d.Kind == KindKeyed {
		return fmt.Sprintf("%s.%s[$%s$%s]", d.ResultsID, d.Field, d.Key, d.Value)
	}
	return fmt.Sprintf("%s.%s[%d]", d.ResultsID, d.Field, d.Index)
}

func keyPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func indexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

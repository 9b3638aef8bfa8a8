package capability

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// LatestVersion в apiVersions принимает любую версию семейства.
const LatestVersion = "latest"

// Registry — реестр capability по objectType и method.
//
// Заполняется один раз при старте и дальше только читается.
// Потокобезопасен.
type Registry struct {
	mu       sync.RWMutex
	funcs    map[string]Func
	versions map[string]string
	closers  []func() error
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		funcs:    make(map[string]Func),
		versions: make(map[string]string),
	}
}

func key(objectType, method string) string {
	return objectType + "." + method
}

// Register регистрирует функцию вызова.
// Повторная регистрация той же пары перезаписывает функцию.
func (r *Registry) Register(objectType, method string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[key(objectType, method)] = fn
}

// Get возвращает функцию вызова.
// Возвращает ErrCapabilityNotFound, если пара не зарегистрирована.
func (r *Registry) Get(objectType, method string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, exists := r.funcs[key(objectType, method)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCapabilityNotFound, key(objectType, method))
	}
	return fn, nil
}

// Has проверяет, зарегистрирована ли пара objectType/method.
func (r *Registry) Has(objectType, method string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.funcs[key(objectType, method)]
	return exists
}

// Names возвращает отсортированный список "ObjectType.Method".
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Families возвращает отсортированный список семейств (objectType).
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for name := range r.funcs {
		family, _, _ := strings.Cut(name, ".")
		seen[family] = true
	}

	families := make([]string, 0, len(seen))
	for f := range seen {
		families = append(families, f)
	}
	sort.Strings(families)
	return families
}

// Count возвращает количество зарегистрированных capability.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

// Invoke вызывает capability.
// Пустой результат заменяется пустой картой.
func (r *Registry) Invoke(ctx context.Context, objectType, method string, params map[string]any) (map[string]any, error) {
	fn, err := r.Get(objectType, method)
	if err != nil {
		return nil, err
	}

	result, err := fn(ctx, params)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCancelled, key(objectType, method), err)
		}
		return nil, err
	}
	if result == nil {
		result = make(map[string]any)
	}
	return result, nil
}

// SetVersion задаёт версию API, под которую собрано семейство.
func (r *Registry) SetVersion(family, version string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[family] = version
}

// Version возвращает версию API семейства; пустая строка — версия не задана.
func (r *Registry) Version(family string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.versions[family]
}

// CheckVersions сверяет apiVersions файла команд с реестром.
//
// Пустое значение и "latest" проходят всегда. Семейство без заданной
// версии принимает любое значение. Неизвестное семейство — ошибка.
func (r *Registry) CheckVersions(selected map[string]string) error {
	families := make(map[string]bool)
	for _, f := range r.Families() {
		families[f] = true
	}

	names := make([]string, 0, len(selected))
	for name := range selected {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, family := range names {
		want := selected[family]
		if !families[family] {
			return fmt.Errorf("%w: unknown family %s", ErrCapabilityNotFound, family)
		}
		if want == "" || want == LatestVersion {
			continue
		}
		if have := r.Version(family); have != "" && have != want {
			return fmt.Errorf("%w: %s requires %s, built for %s", ErrVersionMismatch, family, want, have)
		}
	}
	return nil
}

// OnClose добавляет функцию освобождения ресурсов семейства.
func (r *Registry) OnClose(fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closers = append(r.closers, fn)
}

// Close освобождает ресурсы семейств в обратном порядке.
// Возвращает первую ошибку.
func (r *Registry) Close() error {
	r.mu.Lock()
	closers := r.closers
	r.closers = nil
	r.mu.Unlock()

	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/smithy-go"
)

// Func — функция вызова одной capability.
//
// params — уже разрешённое дерево параметров: строки, числа, карты,
// списки и []byte после бинарной подстановки. Результат — карта свойств,
// на которые ссылаются следующие команды.
type Func func(ctx context.Context, params map[string]any) (map[string]any, error)

// SDKCall превращает метод клиента AWS SDK v2 в Func.
//
// Параметры декодируются во входную структуру через JSON ([]byte
// попадают в поля []byte как есть), выход кодируется обратно в карту
// с числами json.Number.
func SDKCall[In, Out, Opt any](family string, call func(context.Context, *In, ...Opt) (*Out, error)) Func {
	return func(ctx context.Context, params map[string]any) (map[string]any, error) {
		in := new(In)
		if err := Decode(params, in); err != nil {
			return nil, invalidParams(family, "%v", err)
		}

		out, err := call(ctx, in)
		if err != nil {
			return nil, sdkError(family, err)
		}
		return Encode(out)
	}
}

// sdkError разворачивает ошибку SDK в APIError, если сервис вернул код.
func sdkError(family string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	e := &APIError{
		Service: family,
		Code:    apiErr.ErrorCode(),
		Message: apiErr.ErrorMessage(),
		Err:     err,
	}
	var opErr *smithy.OperationError
	if errors.As(err, &opErr) {
		e.Service = opErr.Service()
		e.Operation = opErr.Operation()
	}
	return e
}

// Decode переносит карту параметров в структуру через JSON.
func Decode(params map[string]any, out any) error {
	if params == nil {
		params = map[string]any{}
	}
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode params into %T: %w", out, err)
	}
	return nil
}

// Encode превращает значение в карту свойств.
// Числа сохраняются как json.Number, служебные метаданные SDK отбрасываются.
func Encode(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	if out == nil {
		out = make(map[string]any)
	}
	delete(out, "ResultMetadata")
	return out, nil
}

// without возвращает копию params без перечисленных ключей.
func without(params map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// --- Чтение параметров ---

// String извлекает строковое значение.
func String(params map[string]any, key string) string {
	switch v := params[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case json.Number:
		return v.String()
	}
	return ""
}

// Int извлекает числовое значение.
// Понимает json.Number (JSON), int (YAML), int64 (TOML) и числа в строке.
func Int(params map[string]any, key string) int {
	switch n := params[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return 0
}

// Bool извлекает булево значение.
func Bool(params map[string]any, key string, defaultVal bool) bool {
	switch b := params[key].(type) {
	case bool:
		return b
	case string:
		if v, err := strconv.ParseBool(b); err == nil {
			return v
		}
	}
	return defaultVal
}

// Map извлекает вложенную карту.
func Map(params map[string]any, key string) map[string]any {
	if m, ok := params[key].(map[string]any); ok {
		return m
	}
	return nil
}

// StringMap извлекает карту строк; нестроковые значения пропускаются.
func StringMap(params map[string]any, key string) map[string]string {
	switch m := params[key].(type) {
	case map[string]string:
		return m
	case map[string]any:
		result := make(map[string]string, len(m))
		for k, val := range m {
			switch s := val.(type) {
			case string:
				result[k] = s
			case json.Number:
				result[k] = s.String()
			}
		}
		return result
	}
	return nil
}

// List извлекает список.
func List(params map[string]any, key string) []any {
	switch l := params[key].(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i := range l {
			out[i] = l[i]
		}
		return out
	}
	return nil
}

// Bytes извлекает тело: []byte как есть, строку как байты,
// остальное сериализуется в JSON. Второй результат — было ли тело задано.
func Bytes(params map[string]any, key string) ([]byte, bool, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	switch b := v.(type) {
	case []byte:
		return b, true, nil
	case string:
		return []byte(b), true, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, true, fmt.Errorf("marshal %s: %w", key, err)
		}
		return data, true, nil
	}
}

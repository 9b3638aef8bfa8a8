package orchestrator

import (
	"fmt"
	"log/slog"
)

// redact возвращает копию дерева параметров для логов:
// бинарные подстановки заменяются на "<N bytes>".
func redact(v any) any {
	switch x := v.(type) {
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = redact(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = redact(val)
		}
		return out
	default:
		return v
	}
}

// paramsAttr — атрибут лога с параметрами без бинарных данных.
func paramsAttr(params map[string]any) slog.Attr {
	return slog.Any("params", redact(params))
}

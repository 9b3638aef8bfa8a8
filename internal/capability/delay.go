package capability

import (
	"context"
	"fmt"
	"time"
)

// FamilyDelay — семейство задержек.
const FamilyDelay = "Delay"

// Ключи параметров Delay.
const (
	paramDuration    = "duration"
	paramDurationSec = "duration_sec"
	paramDurationMs  = "duration_ms"
)

// RegisterDelay регистрирует Delay.Wait.
//
// Параметры:
//
//	{"duration": "1m30s"}   // или
//	{"duration_sec": 10}    // или
//	{"duration_ms": 500}
//
// Результат: {"duration_ms": 500}
func RegisterDelay(r *Registry) {
	r.Register(FamilyDelay, "Wait", wait)
}

func wait(ctx context.Context, params map[string]any) (map[string]any, error) {
	d, err := parseDuration(params)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	case <-timer.C:
		return map[string]any{"duration_ms": d.Milliseconds()}, nil
	}
}

func parseDuration(params map[string]any) (time.Duration, error) {
	if s := String(params, paramDuration); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return 0, invalidParams(FamilyDelay, "invalid duration %q", s)
		}
		return d, nil
	}
	if sec := Int(params, paramDurationSec); sec > 0 {
		return time.Duration(sec) * time.Second, nil
	}
	if ms := Int(params, paramDurationMs); ms > 0 {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return 0, invalidParams(FamilyDelay, "duration, duration_sec or duration_ms required")
}

// Package telemetry обеспечивает наблюдаемость invoker.
//
// Включает:
//   - logging.go — structured logging через slog (tint или JSON)
//   - metrics.go — Prometheus метрики команд и runs
//
// Метрики доступны на /metrics в режиме schedule и отправляются
// в Pushgateway после одиночного run, если задан INVOKER_PUSHGATEWAY_URL.
package telemetry

// Package orchestrator выполняет список команд по порядку.
//
// Для каждой команды Orchestrator:
//   - разрешает директивы в params по хранилищу результатов run
//   - вызывает capability через Invoker с таймаутом на вызов
//   - публикует результат под resultsID
//   - сверяет результат с expectedResults
//
// Первая неудача на любом этапе завершает run со статусом FAILED,
// оставшиеся команды не запускаются. Хранилище результатов создаётся
// заново для каждого run, поэтому повторный запуск того же списка
// начинается с чистого состояния.
//
// Наблюдатели (журнал, события RabbitMQ, метрики) получают события
// run через интерфейс Observer.
package orchestrator

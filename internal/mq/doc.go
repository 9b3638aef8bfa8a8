// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — соединение с одним каналом, переподключение, Close
//   - topology.go   — обменник событий, объявление очередей
//   - publisher.go  — конверт Message, публикация JSON и сырых сообщений
//   - events.go     — EventSink: события run как наблюдатель оркестратора
//
// Типы событий (exchange invoker.events, topic):
//   - run.started      — run начал выполняться
//   - command.finished — команда выполнена или упала
//   - run.finished     — run завершён
//
// Тем же соединением пользуется capability AMQP (Publish, DeclareQueue).
package mq

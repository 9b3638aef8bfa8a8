// Package capability содержит внешние вызовы, которые выполняют команды.
//
// # Обзор
//
// Capability — это функция вызова Func, зарегистрированная под парой
// objectType/method. Оркестратор ищет её в Registry по имени из
// команды; рефлексии нет, каждая поддерживаемая пара регистрируется явно.
//
//	registry, err := capability.Default(ctx, capability.Config{
//	    AWS: capability.AWSConfig{Region: "eu-west-1"},
//	})
//	defer registry.Close()
//
//	result, err := registry.Invoke(ctx, "S3", "PutObject", params)
//
// # Семейства
//
//   - S3       — CreateBucket, DeleteBucket, PutObject, GetObject, HeadObject,
//     DeleteObject, ListObjectsV2, ListBuckets (API 2006-03-01)
//   - STS      — GetCallerIdentity (API 2011-06-15)
//   - Lambda   — CreateFunction, UpdateFunctionCode, UpdateFunctionConfiguration,
//     GetFunction, DeleteFunction, PublishVersion, ListVersionsByFunction,
//     Invoke (API 2015-03-31)
//   - HTTP     — GET, POST, PUT, PATCH, DELETE
//   - Postgres — Exec, Query
//   - AMQP     — Publish, DeclareQueue
//   - Delay    — Wait
//
// Вызовы AWS идут через SDKCall: параметры декодируются во входную
// структуру SDK, выход кодируется в карту. Бинарная подстановка
// (<fn.zip>) приходит как []byte и попадает в поля []byte (Code.ZipFile)
// или в тело PutObject без изменений.
//
// # Версии API
//
// Registry.CheckVersions сверяет apiVersions файла команд с версиями,
// под которые собраны семейства. "latest" и пустое значение проходят всегда.
//
// # Обработка ошибок
//
//	var (
//	    ErrCapabilityNotFound // неизвестная пара objectType/method
//	    ErrInvalidParams      // параметры не подходят для вызова
//	    ErrVersionMismatch    // apiVersions не совпадают
//	    ErrCancelled          // отмена контекста или таймаут
//	    ErrUnavailable        // БД или брокер недоступны
//	)
//
// Ошибки AWS разворачиваются в APIError с кодом сервиса,
// ответы HTTP со статусом >= 400 — в HTTPError.
//
// Повторов нет: любая ошибка вызова завершает run.
//
// # Файлы пакета
//
//   - capability.go — Func, SDKCall, Decode/Encode, чтение параметров
//   - registry.go   — Registry, проверка версий, Close
//   - aws.go        — S3, STS, Lambda
//   - http.go       — HTTP
//   - postgres.go   — Postgres
//   - amqp.go       — AMQP
//   - delay.go      — Delay
//   - default.go    — Default: стандартный набор
package capability

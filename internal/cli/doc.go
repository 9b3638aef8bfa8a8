// Package cli реализует инструмент командной строки invoker.
//
// # Команды
//
//   - run FILE          — выполнить файл команд один раз
//   - validate FILE     — статическая проверка без выполнения
//   - capabilities      — список доступных objectType.method
//   - schedule FILE     — повторять выполнение по cron или интервалу
//   - history list|show — журнал runs (при запуске с --journal)
//
// # Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения и логи — в stderr.
// Это позволяет использовать pipe: invoker run smoke.json --json | jq .status
//
// # Окружение
//
// Переменные для директив {%NAME%} берутся из окружения процесса,
// файлов --env-file и --vars (в порядке приоритета от низкого к высокому).
// Из того же набора читаются настройки: AWS_REGION, DB_URL, RABBITMQ_URL и т.д.
package cli

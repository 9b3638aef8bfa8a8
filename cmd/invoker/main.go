// Invoker — выполняет файл команд: последовательные вызовы capability
// (S3, STS, HTTP, Postgres, AMQP, Delay) с подстановкой результатов
// предыдущих команд в параметры следующих.
//
// Использование:
//
//	invoker [--json] [--env-file FILE] [--vars K=V,...] <command> [flags]
//
// Команды:
//
//	run           Выполнить файл команд один раз
//	validate      Проверить файл команд без выполнения
//	capabilities  Список доступных capability
//	schedule      Повторять выполнение по cron или интервалу
//	history       Журнал runs
//
// Код возврата 0, если все команды выполнены и прошли проверку, иначе 1.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shaiso/invoker/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	// graceful shutdown: текущая команда получает отмену, остальные не запускаются
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cli.NewRootCmd(version).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cancel()
		os.Exit(1)
	}
}

package app

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
)

type Runner func(ctx context.Context) error

// Run исполняет run до завершения или до SIGINT/SIGTERM и возвращает
// код выхода процесса. Логирует стандартным log: вызывается до того,
// как прочитан конфиг и собран zerolog-логгер.
func Run(serviceName string, run Runner) int {
	log.Printf("%s starting", serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("%s failed: %v", serviceName, err)
		return 1
	}

	log.Printf("%s stopped", serviceName)
	return 0
}

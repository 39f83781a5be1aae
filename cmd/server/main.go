// Command server runs the wiki HTTP API, live feed and document sync.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/binia1/hyobinwiki/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}

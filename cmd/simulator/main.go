package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/head_tracker/internal/app"
	"github.com/relabs-tech/head_tracker/internal/config"
)

func main() {
	log.Println("starting head-tracker device simulator")

	if err := config.InitGlobal("head_tracker.conf"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunSimulator(ctx); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

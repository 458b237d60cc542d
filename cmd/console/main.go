// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/head_tracker/internal/app"
	"github.com/relabs-tech/head_tracker/internal/config"
)

func main() {
	raw := flag.Bool("raw", false, "dump decoded samples instead of the tracking UI")
	flag.Parse()

	log.Println("starting head-tracker console")

	if err := config.InitGlobal("head_tracker.conf"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run := app.RunConsole
	if *raw {
		run = app.RunRawConsole
	}
	if err := run(ctx); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

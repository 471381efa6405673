package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"turnon/internal/config"
	"turnon/internal/session"

	"github.com/fatih/color"
)

func main() {
	log.SetFlags(0)
	cfg := config.Load()

	path := cfg.SessionPath
	if path == "" {
		path = session.DefaultPath()
	}
	sessions, err := session.Open(path)
	if err != nil {
		log.Fatalf("session: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = newApp(cfg, sessions, os.Stdout).run(ctx, os.Args[1:])
	stop()
	_ = sessions.Close()

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	default:
		color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

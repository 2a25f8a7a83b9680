package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/alovak/atm-playground/atm"
	"golang.org/x/exp/slog"
)

func main() {
	config, err := atm.LoadConfig(".env")
	if err != nil {
		slog.Error("loading config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.LogLevel,
	}))

	app := atm.NewApp(logger, config)
	if err := app.Start(); err != nil {
		logger.Error("starting app", "err", err)
		app.Shutdown()
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	app.Shutdown()
}

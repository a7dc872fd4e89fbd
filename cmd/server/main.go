package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/cadence/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}

	errc, err := srv.Start()
	if err != nil {
		log.Fatal("server start failed: ", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	code := 0
	select {
	case sig := <-sigChan:
		srv.infra.Logger.Info("signal received", "signal", sig.String())
	case err := <-errc:
		srv.infra.Logger.Error("listener failed", "error", err)
		code = 1
	}

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		srv.infra.Logger.Error("shutdown failed", "error", err)
		code = 1
	}

	srv.infra.Logger.Info("cadence stopped")
	os.Exit(code)
}

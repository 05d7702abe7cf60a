package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"finance-console/internal/app"
	"finance-console/internal/config"
	"finance-console/internal/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("console stopped")
		os.Exit(1)
	}
}

// run owns every resource it opens, so returning always releases them.
func run(cfg *config.Config, log *logrus.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	c, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("could not start console: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.WithError(err).Warn("shutdown incomplete")
		}
	}()

	server := app.NewApp(c)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		_ = server.Shutdown()
	}()

	log.WithField("port", cfg.HTTPPort).Info("server listening")
	if err := server.Listen(":" + cfg.HTTPPort); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

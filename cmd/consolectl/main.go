// Command consolectl runs the console's branch reports and category
// maintenance directly against the remote finance API.
package main

import (
	"os"

	"finance-console/internal/app"
	"finance-console/internal/backend"
	"finance-console/internal/config"
	"finance-console/internal/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	cmd := newRootCmd(&env{
		cfg: cfg,
		log: log,
		out: os.Stdout,
		backend: func() (backend.Backend, error) {
			return app.NewBackend(cfg, log)
		},
	})
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

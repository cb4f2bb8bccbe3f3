package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nkoval/mailvault/internal/config"
	"github.com/nkoval/mailvault/internal/daemon"
	"github.com/nkoval/mailvault/internal/paths"
	"go.uber.org/fx"
)

func main() {
	dataDirFlag := flag.String("data-dir", "", "data directory (overrides config)")
	flag.Parse()

	dataDir := paths.BaseDir()
	logLevel := ""
	if cfg, err := config.Load(paths.ConfigPath()); err == nil {
		if cfg.DataDir != "" {
			dataDir = cfg.DataDir
		}
		logLevel = cfg.LogLevel
	}
	if *dataDirFlag != "" {
		dataDir = *dataDirFlag
	}

	if err := paths.EnsureDir(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// The chain source and wallet decoder are supplied by the embedding
	// wallet application; standalone the daemon maintains the store.
	app := fx.New(
		daemon.Module(daemon.Params{DataDir: dataDir, LogLevel: logLevel}),
	)

	app.Run()
}

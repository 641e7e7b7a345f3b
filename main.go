package main

import (
	"fmt"
	"os"

	"media-lending/internal/config"
	"media-lending/library"
)

func main() {
	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	manager, err := library.OpenManager(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	session := library.NewSession(manager, os.Stdin, os.Stdout)
	if err := session.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Session error: %v\n", err)
		os.Exit(1)
	}
}

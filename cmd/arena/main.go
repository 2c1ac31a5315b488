package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/arena/internal/config"
	"github.com/zeusync/arena/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a .yaml or .toml config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "arena:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("     Starting game...")
	if err = app.Prepare(); err != nil {
		return err
	}
	fmt.Printf("Created %d NPCs\n", app.Simulation.Initial())
	fmt.Printf("Game duration: %d seconds\n", int(cfg.Simulation.Duration.Seconds()))
	fmt.Printf("Map size: %dx%d\n", cfg.Simulation.Width, cfg.Simulation.Height)

	if err = app.Run(ctx); err != nil {
		return err
	}
	return app.Finish(os.Stdout)
}

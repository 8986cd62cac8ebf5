package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/jwebster45206/garden-quest/assets"
	"github.com/jwebster45206/garden-quest/internal/config"
	"github.com/jwebster45206/garden-quest/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) > 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [world-dir]\n", os.Args[0])
		os.Exit(1)
	}
	if len(os.Args) == 2 {
		cfg.AssetDir = os.Args[1]
	}

	log := logger.SetupWriter(cfg, os.Stderr)

	source := cfg.AssetDir
	if source == "" {
		source = "embedded world"
	}
	fmt.Printf("Validating %s...\n", path.Join(source, cfg.WorldManifest))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	validator := NewWorldValidator(assets.Open(cfg.AssetDir), cfg.WorldManifest, log)
	err = validator.Validate(ctx)
	validator.WriteReport(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("World is valid!")
}

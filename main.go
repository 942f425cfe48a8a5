package main

import (
	"log"

	"github.com/Vellarasan/AI-Copilot-CLI-Server/config"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/repo"
	"github.com/Vellarasan/AI-Copilot-CLI-Server/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := repo.EnsureBasePath(cfg.ReposBasePath); err != nil {
		log.Fatalf("Failed to create repos base path %s: %v", cfg.ReposBasePath, err)
	}

	if cfg.SetupMode {
		log.Printf("No API key configured - starting in SETUP MODE")
		log.Printf("POST http://%s/setup/generate to create one, then restart", cfg.Addr())
	}

	srv := server.New(cfg)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

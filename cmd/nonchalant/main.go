// If you are AI: This is the server's entrypoint: load config, start
// every registered service, and block until a termination signal
// drains them.

package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"nonchalant/internal/config"
	"nonchalant/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/nonchalant.example.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	srv := server.New(cfg)
	shutdown := server.NewShutdownHandler(srv, context.Background())

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	}()

	if err := shutdown.Wait(); err != nil {
		log.Printf("shutdown error: %v", err)
		os.Exit(1)
	}
	log.Println("server shut down cleanly")
}

package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"mod-ledger/bot"
	"mod-ledger/config"
	"mod-ledger/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	for _, dir := range []string{filepath.Dir(cfg.CaseDBPath), filepath.Dir(cfg.RestrictionDBPath), cfg.Evidence.Path} {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	b, err := bot.New(cfg)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}
	defer b.Close()

	handlers.Register(b)

	if err := b.Run(); err != nil {
		log.Fatalf("Error starting bot: %v", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}

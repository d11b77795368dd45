// Package main is the entry point for the producer service.
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/JustAGhosT/content-creation-sub001/internal/bootstrap"
)

func main() {
	// Load .env early so environment overrides are visible to config loading
	_ = godotenv.Load()

	if err := bootstrap.Start(); err != nil {
		log.Fatalf("producer: %v", err)
	}
}

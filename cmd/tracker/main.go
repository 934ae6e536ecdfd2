// cmd/tracker/main.go

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"huddle/internal/adapter/auth"
	"huddle/internal/config"
	"huddle/internal/tracker"
)

func main() {
	once := flag.Bool("once", false, "send a single high-accuracy report and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Development agents may sign their own token with the shared secret
	if cfg.Tracker.Token == "" && cfg.Environment == "development" && cfg.Tracker.UserID != "" {
		tokens := auth.NewJWTManager(cfg.Identity.TokenSecret, cfg.Identity.TokenIssuer)
		token, err := tokens.GenerateToken(cfg.Tracker.UserID, cfg.Identity.TokenExpiry)
		if err != nil {
			log.Fatalf("Failed to sign development token: %v", err)
		}
		cfg.Tracker.Token = token
	}

	if err := cfg.Tracker.Validate(); err != nil {
		log.Fatalf("Invalid tracker configuration: %v", err)
	}

	t := tracker.NewTracker(
		tracker.NewFixedPositioner(cfg.Tracker.Latitude, cfg.Tracker.Longitude, cfg.Tracker.Accuracy),
		tracker.NewHTTPReporter(cfg.Tracker.ServerURL, cfg.Tracker.Token),
		tracker.Options{
			Interval:        cfg.Tracker.Interval,
			PositionTimeout: cfg.Tracker.PositionTimeout,
			SubmitTimeout:   cfg.Tracker.SubmitTimeout,
			DeviceInfo:      cfg.Tracker.DeviceInfo,
		},
	)

	if *once {
		sample, err := t.SendOnce(context.Background(), cfg.Tracker.UserID)
		if err != nil {
			log.Printf("Failed to send location: %v", err)
			os.Exit(1)
		}
		log.Printf("Sent location %s at %s", sample.ID, sample.ReceivedAt)
		return
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	log.Printf("Tracking %s every %v against %s", cfg.Tracker.UserID, cfg.Tracker.Interval, cfg.Tracker.ServerURL)
	t.Start(cfg.Tracker.UserID)

	<-shutdown
	log.Println("Shutdown signal received")

	t.Stop()
	log.Println("Tracking stopped")
}

// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"

	"huddle/internal/adapter/auth"
	"huddle/internal/adapter/storage"
	"huddle/internal/config"
	"huddle/internal/domain/location"
	"huddle/internal/server"
	locationService "huddle/internal/service/location"
)

type stores struct {
	samples location.SampleStore
	users   location.UserStateStore
	members location.MembershipResolver
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize storage adapters
	var st stores
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Println("Using in-memory storage; data is lost on restart")
		memory := storage.NewMemoryStore()
		st = stores{samples: memory, users: memory, members: memory}
	default:
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		if cfg.Database.EnsureSchema {
			if err := storage.EnsureSchema(ctx, db); err != nil {
				log.Fatalf("Failed to ensure database schema: %v", err)
			}
		}

		locationStore := storage.NewLocationStore(db)
		st = stores{samples: locationStore, users: locationStore, members: storage.NewGroupStore(db)}
	}

	// Left nil when NATS is unavailable; the ingestor then skips publishing
	var eventBus locationService.EventPublisher
	if cfg.NATS.URL != "" {
		natsConn, err := initNATS(cfg.NATS)
		if err != nil {
			log.Printf("Location events disabled: %v", err)
		} else {
			defer natsConn.Close()
			eventBus = natsConn
		}
	}

	// Initialize services
	tokens := auth.NewJWTManager(cfg.Identity.TokenSecret, cfg.Identity.TokenIssuer)

	ingestor := locationService.NewLocationIngestor(
		st.samples,
		st.users,
		eventBus,
		locationService.IngestorConfig{
			EventsTopic: cfg.Location.EventsTopic,
		},
	)

	aggregator := locationService.NewGroupAggregator(st.members, st.samples)

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, tokens, ingestor, aggregator)

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("huddle-api"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

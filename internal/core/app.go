package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/blackhole-app/blackhole-go/internal/assets"
	"github.com/blackhole-app/blackhole-go/internal/config"
	"github.com/blackhole-app/blackhole-go/internal/db"
)

// App holds the core components of the application that are shared
// between the server and any auxiliary tooling.
type App struct {
	Config *config.Config
	DB     *sql.DB
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		// We can't proceed without a valid database schema.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	log.Println("Core application setup complete.")
	return &App{
		Config: cfg,
		DB:     database,
	}, nil
}

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

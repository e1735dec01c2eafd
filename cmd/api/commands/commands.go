package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/taskboard/core/internal/adapters/repository"
	"github.com/taskboard/core/internal/application/services"
	"github.com/taskboard/core/internal/infrastructure/config"
	"github.com/taskboard/core/internal/infrastructure/database"
	"github.com/taskboard/core/internal/infrastructure/logger"
	"github.com/taskboard/core/internal/infrastructure/server"
	"github.com/taskboard/core/internal/ports"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the TaskBoard server",
		Long:  "Start the TaskBoard server with the configured storage backend",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations for the postgres storage backend (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigration("down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		Run: func(cmd *cobra.Command, args []string) {
			showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewCategoryCommand creates the category management command
func NewCategoryCommand() *cobra.Command {
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Category management commands",
		Long:  "Create task categories directly against the configured storage backend",
	}

	createCategoryCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task category",
		Run: func(cmd *cobra.Command, args []string) {
			name, _ := cmd.Flags().GetString("name")
			taskText, _ := cmd.Flags().GetString("task")
			dueDate, _ := cmd.Flags().GetString("due")

			if name == "" {
				log.Fatal("Category name is required")
			}

			createCategory(name, taskText, dueDate)
		},
	}

	createCategoryCmd.Flags().String("name", "", "Category name (required)")
	createCategoryCmd.Flags().String("task", "", "Optional first task text")
	createCategoryCmd.Flags().String("due", "", "Optional first task due date (YYYY-MM-DD)")

	categoryCmd.AddCommand(createCategoryCmd)
	return categoryCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print TaskBoard version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("TaskBoard Core v1.0.0")
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	repo, err := newRepository(cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize storage", "error", err)
	}

	boardService, err := services.NewBoardService(context.Background(), repo, appLogger.WithComponent("board"))
	if err != nil {
		appLogger.Fatal("Failed to load board document", "error", err)
	}

	srv, err := server.New(cfg, boardService, repo, appLogger.WithComponent("http"))
	if err != nil {
		appLogger.Fatal("Failed to initialize server", "error", err)
	}

	appLogger.Info("Starting TaskBoard server",
		"port", cfg.Server.Port,
		"backend", cfg.Storage.Backend,
		"environment", cfg.App.Environment,
	)

	go func() {
		if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
			appLogger.Info("Server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server shutdown failed", "error", err)
	}
	// Final save before the process exits
	if err := boardService.Close(ctx); err != nil {
		appLogger.Error("Board shutdown failed", "error", err)
	}
}

// newRepository builds the document repository for the configured
// storage backend.
func newRepository(cfg *config.Config) (ports.DocumentRepository, error) {
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return repository.NewPostgresRepository(db), nil
	default:
		return repository.NewFileRepository(cfg.Storage.FilePath), nil
	}
}

func runMigration(direction string) {
	m := newMigrator()

	var err error
	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("Migration failed: %v", err)
	}

	if err == migrate.ErrNoChange {
		fmt.Println("No migrations to run")
	} else {
		fmt.Printf("Migration %s completed successfully\n", direction)
	}
}

func showMigrationVersion() {
	m := newMigrator()

	version, dirty, err := m.Version()
	if err != nil {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
}

func newMigrator() *migrate.Migrate {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	driver, err := postgres.WithInstance(db.DB.DB, &postgres.Config{})
	if err != nil {
		log.Fatalf("Failed to create migration driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatalf("Failed to create migration instance: %v", err)
	}

	return m
}

func createCategory(name, taskText, dueDate string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	repo, err := newRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	ctx := context.Background()
	boardService, err := services.NewBoardService(ctx, repo, logger.NewNop())
	if err != nil {
		log.Fatalf("Failed to load board document: %v", err)
	}

	category, err := boardService.CreateCategory(ctx, name, taskText, dueDate)
	if err != nil {
		log.Fatalf("Failed to create category: %v", err)
	}

	fmt.Printf("Category created successfully:\n")
	fmt.Printf("  ID: %s\n", category.ID)
	fmt.Printf("  Name: %s\n", category.Name)
	if len(category.Tasks) > 0 {
		fmt.Printf("  First task: %s", category.Tasks[0].Text)
		if category.Tasks[0].DueDate != "" {
			fmt.Printf(" (due %s)", category.Tasks[0].DueDate)
		}
		fmt.Println()
	}

	if err := boardService.Close(ctx); err != nil {
		log.Fatalf("Failed to close board: %v", err)
	}
}

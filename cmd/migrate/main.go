package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/storefront-filters/internal/pkg/logging"
)

var (
	projectID  = flag.String("project", getEnvOrDefault("SPANNER_PROJECT_ID", "test-project"), "GCP project ID")
	instanceID = flag.String("instance", getEnvOrDefault("SPANNER_INSTANCE_ID", "dev-instance"), "Spanner instance ID")
	databaseID = flag.String("database", getEnvOrDefault("SPANNER_DATABASE_ID", "storefront-filters-db"), "Spanner database ID")
	migrateDir = flag.String("migrations", "migrations", "Directory containing migration SQL files")
	dryRun     = flag.Bool("dry-run", false, "Print the DDL statements without applying them")
)

func main() {
	flag.Parse()

	logger, err := logging.New(getEnvOrDefault("LOG_LEVEL", "info"), true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	if emulatorHost := os.Getenv("SPANNER_EMULATOR_HOST"); emulatorHost != "" {
		logger.Info("Using Spanner emulator", zap.String("host", emulatorHost))
	}

	if err := run(ctx, logger); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	logger.Info("Catalog mirror schema is up to date")
}

func run(ctx context.Context, logger *zap.Logger) error {
	migrations, err := loadMigrations(*migrateDir)
	if err != nil {
		return err
	}

	if *dryRun {
		for _, m := range migrations {
			fmt.Printf("-- %s\n", m.name)
			for _, stmt := range m.statements {
				fmt.Printf("%s;\n\n", stmt)
			}
		}
		return nil
	}

	if err := ensureInstance(ctx, logger); err != nil {
		return fmt.Errorf("failed to ensure instance: %w", err)
	}

	if err := ensureDatabase(ctx, logger); err != nil {
		return fmt.Errorf("failed to ensure database: %w", err)
	}

	if err := applyMigrations(ctx, logger, migrations); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

func instancePath() string {
	return fmt.Sprintf("projects/%s/instances/%s", *projectID, *instanceID)
}

func databasePath() string {
	return fmt.Sprintf("%s/databases/%s", instancePath(), *databaseID)
}

func ensureInstance(ctx context.Context, logger *zap.Logger) error {
	logger.Info("Ensuring instance exists", zap.String("instance", *instanceID))

	instanceAdmin, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer instanceAdmin.Close()

	_, err = instanceAdmin.GetInstance(ctx, &instancepb.GetInstanceRequest{
		Name: instancePath(),
	})
	if err == nil {
		return nil
	}

	if status.Code(err) != codes.NotFound {
		logger.Warn("Unexpected error checking instance", zap.Error(err))
		return nil
	}

	logger.Info("Creating instance")
	op, err := instanceAdmin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     fmt.Sprintf("projects/%s", *projectID),
		InstanceId: *instanceID,
		Instance: &instancepb.Instance{
			Config:      fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", *projectID),
			DisplayName: "Storefront filters",
			NodeCount:   1,
		},
	})
	if err != nil {
		if status.Code(err) != codes.AlreadyExists {
			return fmt.Errorf("failed to create instance: %w", err)
		}
		return nil
	}

	// The emulator may complete immediately.
	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		logger.Warn("Instance creation did not report success", zap.Error(err))
	}
	return nil
}

func ensureDatabase(ctx context.Context, logger *zap.Logger) error {
	logger.Info("Ensuring database exists", zap.String("database", *databaseID))

	adminClient, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	_, err = adminClient.GetDatabase(ctx, &databasepb.GetDatabaseRequest{
		Name: databasePath(),
	})
	if err == nil {
		return nil
	}

	if status.Code(err) == codes.NotFound {
		logger.Info("Creating database")
		op, err := adminClient.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
			Parent:          instancePath(),
			CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", *databaseID),
		})
		if err != nil {
			if status.Code(err) != codes.AlreadyExists {
				return fmt.Errorf("failed to create database: %w", err)
			}
			return nil
		}

		if _, err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to wait for database creation: %w", err)
		}
		return nil
	}

	if os.Getenv("SPANNER_EMULATOR_HOST") != "" {
		logger.Warn("Proceeding with database (emulator mode)", zap.Error(err))
		return nil
	}

	return fmt.Errorf("failed to check database: %w", err)
}

type migration struct {
	name       string
	statements []string
}

// loadMigrations reads *.sql files from dir in file name order.
func loadMigrations(dir string) ([]migration, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to list migration files: %w", err)
	}
	sort.Strings(files)

	migrations := make([]migration, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}
		stmts := splitDDLStatements(string(content))
		if len(stmts) == 0 {
			continue
		}
		migrations = append(migrations, migration{name: filepath.Base(file), statements: stmts})
	}
	return migrations, nil
}

func applyMigrations(ctx context.Context, logger *zap.Logger, migrations []migration) error {
	if len(migrations) == 0 {
		logger.Info("No migration files found", zap.String("dir", *migrateDir))
		return nil
	}

	adminClient, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	for _, m := range migrations {
		logger.Info("Applying migration", zap.String("file", m.name), zap.Int("statements", len(m.statements)))

		op, err := adminClient.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
			Database:   databasePath(),
			Statements: m.statements,
		})
		if err != nil {
			return fmt.Errorf("failed to start DDL update for %s: %w", m.name, err)
		}

		if err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to apply DDL for %s: %w", m.name, err)
		}
	}

	return nil
}

// splitDDLStatements drops comment lines and splits on semicolons.
func splitDDLStatements(content string) []string {
	var cleaned []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	var result []string
	for _, stmt := range strings.Split(strings.Join(cleaned, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

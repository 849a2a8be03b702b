// Command migrate applies and authors the goose migrations for the shipdesk
// orders database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/shipdesk-backend/pkg/config"
	"github.com/angelmondragon/shipdesk-backend/pkg/db"
	"github.com/angelmondragon/shipdesk-backend/pkg/logger"
	"github.com/angelmondragon/shipdesk-backend/pkg/migrate"
)

const usage = `shipdesk-migrate manages the orders, credits, outbox and tenant tables.

Usage:
  shipdesk-migrate -cmd=up                     apply every pending migration
  shipdesk-migrate -cmd=down                   roll back the latest migration
  shipdesk-migrate -cmd=status                 list applied and pending migrations
  shipdesk-migrate -cmd=version -version=V     migrate up or down to version V
  shipdesk-migrate -cmd=create -name=add_x     write a new timestamped SQL file
  shipdesk-migrate -cmd=validate               check the directory without a database

The database connection is read from SHIPDESK_DB_* (a .env file is honoured).

Flags:
`

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "shipdesk-migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "one of up, down, status, version, create, validate")
	dir := flag.String("dir", migrate.DefaultDir, "directory holding the shipdesk SQL migrations")
	name := flag.String("name", "", "snake_case name of the migration to create")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "shipdesk-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	// create and validate only touch the filesystem
	switch *cmd {
	case "create":
		if *name == "" {
			fmt.Fprintln(os.Stderr, "-cmd=create needs -name, e.g. -name=add_orders_sub_group_index")
			os.Exit(2)
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create migration: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fmt.Fprintf(os.Stderr, "migration validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s: migrations are valid\n", *dir)
		return
	}

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	logg.Info(ctx, "connected to orders database")

	switch *cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, *dir, *cmd); err != nil {
			fmt.Fprintf(os.Stderr, "shipdesk-migrate %s: %v\n", *cmd, err)
			os.Exit(1)
		}

	case "version":
		if *version == "" {
			fmt.Fprintln(os.Stderr, "-cmd=version needs -version=YYYYMMDDHHMMSS")
			os.Exit(2)
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, *dir, *version); err != nil {
			fmt.Fprintf(os.Stderr, "shipdesk-migrate version %s: %v\n", *version, err)
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown -cmd %q\n\n", *cmd)
		flag.Usage()
		os.Exit(2)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/fekt2016/eaz-back-sub005/pkg/config"
	"github.com/fekt2016/eaz-back-sub005/pkg/db"
	"github.com/fekt2016/eaz-back-sub005/pkg/logger"
	"github.com/fekt2016/eaz-back-sub005/pkg/migrate"
)

type cliFlags struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	var f cliFlags
	flag.StringVar(&f.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&f.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&f.name, "name", "", "migration name (for create)")
	flag.StringVar(&f.version, "version", "", "target goose version (for -cmd=version)")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(f cliFlags) error {
	_ = godotenv.Load()

	// create and validate work without a database
	switch f.cmd {
	case "create":
		if f.name == "" {
			return fmt.Errorf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(f.dir, f.name)
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Println("created migration:", path)
		return nil

	case "validate":
		if err := migrate.ValidateDir(f.dir); err != nil {
			return fmt.Errorf("migration validation failed: %w", err)
		}
		fmt.Println("migration validation passed")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": f.cmd,
		"dir": f.dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("unwrap sql database: %w", err)
	}

	switch f.cmd {
	case "up":
		return migrate.Up(ctx, sqlDB, f.dir)
	case "down":
		return migrate.Down(ctx, sqlDB, f.dir)
	case "status":
		return migrate.Status(ctx, sqlDB, f.dir)
	case "version":
		target, err := strconv.ParseInt(f.version, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid -version %q (expected a goose version number)", f.version)
		}
		return migrate.To(ctx, sqlDB, f.dir, target)
	default:
		return fmt.Errorf("unknown -cmd value: %s", f.cmd)
	}
}

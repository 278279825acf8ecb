// Command migrate applies the goose migrations in db/migrations.
//
//	migrate [up|down|status]
//	migrate create <name>
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"libraryapi/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const migrationsDir = "db/migrations"

func main() {
	flag.Parse()
	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}
	if err := run(command, flag.Arg(1)); err != nil {
		log.Fatalf("migrate %s: %v", command, err)
	}
}

func run(command, name string) error {
	if command == "create" {
		if name == "" {
			return fmt.Errorf("create needs a migration name")
		}
		return goose.Create(nil, migrationsDir, name, "sql")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, config.DSN())
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	switch command {
	case "up":
		return goose.Up(db, migrationsDir)
	case "down":
		return goose.Down(db, migrationsDir)
	case "status":
		return goose.Status(db, migrationsDir)
	default:
		return fmt.Errorf("unknown command %q (want up, down, status or create)", command)
	}
}

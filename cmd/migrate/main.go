package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/apper-apps/tekxora-tools-chip/internal/infra"
	"github.com/apper-apps/tekxora-tools-chip/internal/sqlinline"
)

func main() {
	_ = godotenv.Load()

	var (
		dsnFlag    string
		dryRunFlag bool
	)
	flag.StringVar(&dsnFlag, "database-url", os.Getenv("DATABASE_URL"), "postgres connection string")
	flag.BoolVar(&dryRunFlag, "dry-run", false, "print the schema instead of applying it")
	flag.Parse()

	if dryRunFlag {
		fmt.Print(sqlinline.Schema)
		return
	}

	dsn := strings.TrimSpace(dsnFlag)
	if dsn == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "migrate").Logger()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		exitWithError(fmt.Errorf("open database: %w", err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		exitWithError(fmt.Errorf("ping database: %w", err))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		exitWithError(fmt.Errorf("begin: %w", err))
	}
	if _, err := tx.ExecContext(ctx, sqlinline.Schema); err != nil {
		_ = tx.Rollback()
		exitWithError(fmt.Errorf("apply schema: %w", err))
	}
	if err := tx.Commit(); err != nil {
		exitWithError(fmt.Errorf("commit: %w", err))
	}
	logger.Info().Msg("schema applied")
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
	os.Exit(1)
}

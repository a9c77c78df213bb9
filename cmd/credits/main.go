// Command credits administers accounts, credit grants and provider keys
// against the postgres store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := rootCommand(openPostgres).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "credits: %v\n", err)
		os.Exit(1)
	}
}

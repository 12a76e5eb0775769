// Applies the schema in deploy/postgres/init.sql to the configured
// database. Intended for development and test environments; production
// rollouts run migrations out of band.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"inet-marketplace/internal/config"
	pg "inet-marketplace/internal/infra/db/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	schemaPath := "deploy/postgres/init.sql"
	if args := flag.Args(); len(args) > 0 {
		schemaPath = args[0]
	}

	schema, err := os.ReadFile(schemaPath)
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	fmt.Printf("schema %s applied\n", schemaPath)
}

// Command seed creates the dashboard schema and loads the placeholder data,
// the same work GET /seed does.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/invoice-dashboard/internal/database"
	"github.com/iliyamo/invoice-dashboard/internal/seed"
)

func main() {
	_ = godotenv.Load()

	dsnDefault := os.Getenv("POSTGRES_URL")
	if dsnDefault == "" {
		dsnDefault = os.Getenv("DATABASE_URL")
	}
	driver := flag.String("driver", envOr("DB_DRIVER", "postgres"), "postgres | mysql | sqlite")
	dsn := flag.String("dsn", dsnDefault, "connection string (defaults to POSTGRES_URL / DATABASE_URL)")
	cost := flag.Int("bcrypt-cost", 10, "bcrypt cost for the placeholder password")
	insecure := flag.Bool("tls-insecure", os.Getenv("DB_TLS_INSECURE") != "false", "skip TLS certificate verification")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("seed: no connection string; set POSTGRES_URL or pass -dsn")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(ctx, database.Options{Driver: *driver, DSN: *dsn, InsecureTLS: *insecure})
	if err != nil {
		log.Fatalf("seed: open database: %v", err)
	}
	defer db.Close()

	if err := seed.Run(ctx, db, *cost); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Println("Database seeded successfully")
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

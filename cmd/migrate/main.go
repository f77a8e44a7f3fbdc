package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	"smarthome-be/internal/migrate"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "up", "migration mode: up or down")
	flag.Parse()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL not set in environment")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := migrate.Run(db, migrate.Direction(*mode)); err != nil {
		log.Fatal(err)
	}
	log.Printf("migrations %s complete", *mode)
}

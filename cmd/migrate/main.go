package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"

	"renewables-analytics/internal/config"
	"renewables-analytics/pkg/database"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	dir := flag.String("dir", "migrations", "Directory holding the migration files")
	flag.Parse()

	if *direction != "up" && *direction != "down" {
		fmt.Fprintf(os.Stderr, "Invalid direction %q, expected up or down\n", *direction)
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	dbConfig := &database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	}

	db, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to ping database: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Connected to database successfully")

	migrationFile := filepath.Join(*dir, "001_create_schema."+*direction+".sql")
	content, err := os.ReadFile(migrationFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read migration file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Running migration: %s\n", migrationFile)

	if _, err := db.Exec(string(content)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Migration completed successfully")
}

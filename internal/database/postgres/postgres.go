package postgres

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"tarification-service/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var DBStatus bool

func ConnectAndCreateDB(cfg config.PostgresConfig) (*sqlx.DB, error) {
	defaultConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	defaultDB, err := sql.Open("postgres", defaultConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	err = defaultDB.QueryRow(checkQuery, cfg.DBname).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		createQuery := fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)
		_, err = defaultDB.Exec(createQuery)
		if err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		log.Printf("Database '%s' created successfully", cfg.DBname)
	}

	targetConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.DBname)

	db, err := sqlx.Connect("postgres", targetConnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping target database: %w", err)
	}

	// Execute schema.sql if database was newly created
	if !exists {
		if err := executeSchema(db); err != nil {
			log.Printf("Warning: Failed to execute schema.sql: %v", err)
			// Don't return error, just log warning to allow manual schema setup
		}
	}

	DBStatus = true
	return db, nil
}

// executeSchema reads and executes the schema.sql file
func executeSchema(db *sqlx.DB) error {
	schemaPath := os.Getenv("SCHEMA_PATH")
	if schemaPath == "" {
		schemaPath = "schema.sql"
	}

	schemaContent, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema from %s: %w", schemaPath, err)
	}

	log.Printf("Executing schema from: %s", schemaPath)

	// Split schema into individual statements (split by semicolon)
	statements := strings.Split(string(schemaContent), ";")

	successCount := 0
	for i, statement := range statements {
		statement = strings.TrimSpace(statement)
		if statement == "" || strings.HasPrefix(statement, "--") {
			continue // Skip empty lines and comments
		}

		_, err := db.Exec(statement)
		if err != nil {
			log.Printf("Warning: Failed to execute statement %d: %v", i+1, err)
			// Continue executing other statements even if one fails
		} else {
			successCount++
		}
	}

	log.Printf("Schema execution completed. Successfully executed %d statements", successCount)
	return nil
}

func RetryConnectOnFailed(waitAmount time.Duration, db **sqlx.DB, cfg config.PostgresConfig) {
	if DBStatus {
		log.Printf("false database lost connection alert! abort retry")
		return
	}

	if *db != nil {
		curDB := *db
		err := curDB.Ping()
		if err == nil {
			log.Printf("database connection is healthy, no retry needed")
			return
		}
		log.Printf("failed to ping target database: %s, retry db connection", err)
	} else {
		log.Printf("database connection is nil, attempting to reconnect...")
	}

	newDB, err := ConnectAndCreateDB(cfg)
	if err == nil {
		*db = newDB
		log.Printf("database retry connection successfully")
		return
	}
	log.Printf("failed to retry connect database: %s, next retry in %v", err, waitAmount)
	time.Sleep(waitAmount)

	RetryConnectOnFailed(waitAmount, db, cfg)
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/ridoystarlord/packpipe/utils"
	_ "modernc.org/sqlite"
)

var (
	target     *sql.DB
	targetOnce sync.Once
	targetErr  error
)

// OpenStaging opens (creating if missing) the local staging database.
func OpenStaging(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open staging database: %v", err)
	}

	// Staged writes come from a single CLI process
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping staging database: %v", err)
	}

	return db, nil
}

// GetTarget returns a singleton connection to the target application database
func GetTarget() (*sql.DB, error) {
	targetOnce.Do(func() {
		utils.LoadEnv()
		connStr := os.Getenv("DATABASE_URL")
		if connStr == "" {
			targetErr = fmt.Errorf("DATABASE_URL not set in environment")
			return
		}

		target, targetErr = sql.Open("pgx", connStr)
		if targetErr != nil {
			targetErr = fmt.Errorf("unable to open target connection: %v", targetErr)
			return
		}

		// Test the connection
		if err := target.PingContext(context.Background()); err != nil {
			target.Close()
			target = nil
			targetErr = fmt.Errorf("unable to ping target database: %v", err)
			return
		}
	})

	return target, targetErr
}

// CloseTarget closes the target connection (should be called on application shutdown)
func CloseTarget() {
	if target != nil {
		target.Close()
	}
}

package main

import (
	"log"
	"os"

	"strukscan/pkg/config"
	"strukscan/pkg/store"

	"gorm.io/gorm"
)

var db *gorm.DB

// defaultAdminPassword seeds the admin account on an empty database.
const defaultAdminPassword = "admin123"

func initDB(c *config.Config) {
	var err error
	db, err = store.Open(c.DBDSN)
	if err != nil {
		log.Fatalf("database: %v. This project requires a Postgres DSN in DB_DSN.", err)
	}
	// DB_AUTO_MIGRATE=false skips schema changes; seeding still runs.
	if c.DBAutoMigrate {
		store.Migrate(db)
	}
	if err := store.Seed(db, defaultAdminPassword); err != nil {
		log.Printf("WARN seeding failed: %v", err)
	}
	ensureUploadBase(c.UploadBase)
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase(base string) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		log.Printf("failed to create upload base dir %s: %v", base, err)
	}
}

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/OktaWirawan/anitasalonn/internal/auth"
	"github.com/OktaWirawan/anitasalonn/internal/config"
	"github.com/OktaWirawan/anitasalonn/internal/models"
	"github.com/OktaWirawan/anitasalonn/internal/store"
)

// Initializes the data directory: empty collection files plus one admin
// account taken from ADMIN_NAME / ADMIN_EMAIL / ADMIN_PASSWORD.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	adminName := os.Getenv("ADMIN_NAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}
	if adminName == "" {
		adminName = "Admin"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	st, err := store.Open(cfg.DataDir, logger, models.Definitions()...)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Touch every collection so missing files are created up front.
	for _, name := range []string{models.ResourceUsers, models.ResourceBookings, models.ResourceContacts} {
		col, _ := st.Collection(name)
		if _, err := col.Load(ctx); err != nil {
			log.Fatalf("init %s: %v", name, err)
		}
	}

	hash, err := auth.HashPassword(adminPassword)
	if err != nil {
		log.Fatal(err)
	}

	users, _ := st.Collection(models.ResourceUsers)
	err = users.Mutate(ctx, func(records []store.Record) ([]store.Record, error) {
		for _, rec := range records {
			if email, _ := rec["email"].(string); email == adminEmail {
				log.Printf("admin %s already present, skipping", adminEmail)
				return records, nil
			}
		}
		records = append(records, store.Record{
			"id":       users.NextID(records),
			"name":     adminName,
			"email":    adminEmail,
			"password": hash,
			"role":     models.RoleAdmin,
			"date":     time.Now().Format(models.RegistrationDateLayout),
		})
		log.Printf("admin %s created", adminEmail)
		return records, nil
	})
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("data directory %s ready", cfg.DataDir)
}

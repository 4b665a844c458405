package main

import (
	"context"
	"flag"
	"log"

	"classcheck/internal/config"
	"classcheck/internal/store"
	"classcheck/internal/user"
)

// Seed creates the initial admin account so the web UI has a login to
// start from. Safe to re-run: an existing username is left untouched.
func main() {
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "ผู้ดูแลระบบ", "display name")
	flag.Parse()

	if *password == "" {
		log.Fatal("missing -password")
	}

	cfg := config.Load()
	ctx := context.Background()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	repo := user.NewRepository(db.Client)
	users := user.NewService(repo, cfg.BcryptCost)

	existing, err := repo.GetByUsername(ctx, *username)
	if err != nil {
		log.Fatalf("lookup %q failed: %v", *username, err)
	}
	if existing != nil {
		log.Printf("user %q already exists, nothing to do", *username)
		return
	}

	created, err := users.Create(ctx, *username, *password, user.RoleAdmin, name)
	if err != nil {
		log.Fatalf("create admin failed: %v", err)
	}
	log.Printf("created admin %q (id %s)", created.Username, created.ID)
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"strukscan/models"
	"strukscan/pkg/config"
	"strukscan/pkg/store"
)

func main() {
	admin := flag.Bool("admin", false, "grant the administrator role")
	flag.Parse()
	if flag.NArg() < 2 {
		fmt.Println("usage: go run ./cmd/create_user [-admin] <username> <password>")
		os.Exit(2)
	}
	username, password := flag.Arg(0), flag.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	db, err := store.Open(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}

	role := models.RoleUser
	if *admin {
		role = models.RoleAdministrator
	}
	user, err := store.CreateUser(db, username, password, role)
	if errors.Is(err, store.ErrUserExists) {
		fmt.Printf("user %s already exists (id=%d)\n", username, user.ID)
		return
	}
	if err != nil {
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%d role=%s\n", username, user.ID, role)
}

// create-admin bootstraps an admin or superadmin account directly in
// storage. The first superadmin has to come from somewhere; after that,
// admins are normally provisioned through the API.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/unigate-dev/unigate/internal/config"
	"github.com/unigate-dev/unigate/internal/domain"
	"github.com/unigate-dev/unigate/internal/logger"
	"github.com/unigate-dev/unigate/internal/storage/pg"
)

func main() {
	_ = godotenv.Load()

	var (
		configFolder string
		email        string
		password     string
		role         string
		firstName    string
		lastName     string
	)
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.StringVar(&email, "email", "", "account email")
	flag.StringVar(&password, "password", "", "account password")
	flag.StringVar(&role, "role", "superadmin", "account role: admin or superadmin")
	flag.StringVar(&firstName, "first_name", "System", "first name")
	flag.StringVar(&lastName, "last_name", "Administrator", "last name")
	flag.Parse()

	if email == "" || password == "" {
		fmt.Fprintln(os.Stderr, "both -email and -password are required")
		os.Exit(2)
	}
	accountRole := domain.Role(role)
	if accountRole != domain.RoleAdmin && accountRole != domain.RoleSuperAdmin {
		fmt.Fprintln(os.Stderr, "-role must be admin or superadmin")
		os.Exit(2)
	}

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	if len(password) < cfg.Public.MinPasswordLen {
		fmt.Fprintf(os.Stderr, "password must be at least %d characters\n", cfg.Public.MinPasswordLen)
		os.Exit(2)
	}

	storage, err := pg.New(cfg)
	if err != nil {
		logger.Log.Error("failed to connect to storage", "error", err)
		os.Exit(1)
	}
	defer storage.Cleanup()

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		os.Exit(1)
	}

	now := time.Now().UTC()
	user := domain.User{
		Email:        email,
		PasswordHash: string(passHash),
		Role:         accountRole,
		Status:       domain.StatusApproved,
		FirstName:    firstName,
		LastName:     lastName,
		VerifiedAt:   &now,
	}

	created, err := storage.CreateUser(user, nil)
	if err != nil {
		logger.Log.Error("failed to create account", "error", err)
		os.Exit(1)
	}

	fmt.Printf("created %s account %s (id %d)\n", created.Role, created.Email, created.Id)
}

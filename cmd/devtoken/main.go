package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/curlmap/curlmap-api/internal/config"
	"github.com/curlmap/curlmap-api/internal/domain/user"
	"github.com/curlmap/curlmap-api/internal/pkg/database"
	"github.com/curlmap/curlmap-api/internal/pkg/jwt"
)

// devtoken registers a user row and prints an access token for it.
// Identity is owned by an external provider in production; this is for
// local development only.
func main() {
	idFlag := flag.String("id", "", "user id (random when empty)")
	roleFlag := flag.String("role", string(user.RoleCustomer), "customer, provider or admin")
	nameFlag := flag.String("name", "", "display name")
	ttlFlag := flag.Duration("ttl", 0, "token lifetime (JWT_ACCESS_TTL when zero)")
	noDB := flag.Bool("no-db", false, "skip registering the user in the database")
	flag.Parse()

	cfg := config.Load()
	if cfg.IsProduction() {
		log.Fatal("devtoken refuses to run with ENV=production")
	}

	if !user.IsValidRole(*roleFlag) {
		log.Fatalf("Unknown role %q", *roleFlag)
	}
	role := user.Role(*roleFlag)

	id := uuid.New()
	if *idFlag != "" {
		parsed, err := uuid.Parse(*idFlag)
		if err != nil {
			log.Fatalf("Invalid user id: %v", err)
		}
		id = parsed
	}

	name := *nameFlag
	if name == "" {
		name = fmt.Sprintf("%s-%s", role, id.String()[:8])
	}

	if !*noDB {
		db, err := database.NewPostgres(cfg.DatabaseURL, database.DefaultPoolConfig)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.ClosePostgres(db)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		u := &user.User{ID: id, Role: role, DisplayName: name}
		if err := user.NewRepository(db).Upsert(ctx, u); err != nil {
			log.Fatalf("Failed to register user: %v", err)
		}
	}

	ttl := cfg.JWTAccessTTL
	if *ttlFlag > 0 {
		ttl = *ttlFlag
	}
	token, err := jwt.NewService(cfg.JWTSecret, ttl).GenerateAccessToken(id, string(role))
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Printf("user_id: %s\nrole:    %s\nname:    %s\nexpires: %s\n\n%s\n",
		id, role, name, time.Now().Add(ttl).Format(time.RFC3339), token)
}

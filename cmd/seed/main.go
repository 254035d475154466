package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-user-registry/config"
	"github.com/oksasatya/go-user-registry/internal/application"
	"github.com/oksasatya/go-user-registry/internal/container"
	"github.com/oksasatya/go-user-registry/pkg/helpers"
)

// demo accounts; both share the demo password
var demoUsers = []string{"Daniel", "Lélia"}

const demoPassword = "password123"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	store, closeStore, err := container.OpenStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	c := &container.Container{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Hasher: application.NewBcryptHasher(cfg.BcryptCost),
	}
	// registrations reach the search directory like the server's do
	defer c.ConnectOptional()()
	svc := c.Service()

	for _, name := range demoUsers {
		_, err := svc.Register(ctx, name, demoPassword, demoPassword)
		switch application.KindOf(err) {
		case application.KindUnknown:
			if err != nil {
				log.Fatalf("failed to seed %s: %v", name, err)
			}
			fmt.Printf("seeded user: username=%s password=%s\n", name, demoPassword)
		case application.KindDuplicateUser:
			fmt.Printf("user %s already exists, skipped\n", name)
		default:
			log.Fatalf("failed to seed %s: %v", name, err)
		}
	}
}

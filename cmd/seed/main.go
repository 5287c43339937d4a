package main

import (
	"context"
	"fmt"
	"log"

	"userbase/internal/config"
	"userbase/internal/db"
	"userbase/internal/model"
	"userbase/internal/repository"
	"userbase/internal/service"
)

const dummyGuestCount = 100

// Seeds the database with the three well-known accounts plus a batch of
// dummy guests. Drops and recreates both tables first; never point this at
// a production database.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	for _, table := range []interface{}{&model.PasswordResetToken{}, &model.User{}} {
		if err := gormDB.Migrator().DropTable(table); err != nil {
			log.Printf("Warning: failed to drop table (may not exist): %v", err)
		}
	}
	if err := gormDB.AutoMigrate(&model.User{}, &model.PasswordResetToken{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Schema recreated")

	userRepo := repository.NewUserRepository(gormDB)
	svc := service.NewUserService(userRepo, nil)

	ctx := context.Background()

	seedUsers := []struct {
		name, email, password string
		role                  model.Role
	}{
		{"Administrator", "admin@mail.com", "admin", model.RoleAdmin},
		{"Manager", "manager@mail.com", "manager", model.RoleManager},
		{"Guest", "guest@mail.com", "guest", model.RoleGuest},
	}
	for _, u := range seedUsers {
		if _, err := svc.AddUser(ctx, u.name, u.email, u.password, u.role); err != nil {
			log.Fatalf("Failed to seed %s: %v", u.email, err)
		}
	}
	log.Printf("Seeded %d well-known accounts", len(seedUsers))

	seeded := 0
	for i := 1; i <= dummyGuestCount; i++ {
		name := fmt.Sprintf("Guest User %d", i)
		email := fmt.Sprintf("guest%d@mail.com", i)
		if _, err := svc.AddUser(ctx, name, email, "password", model.RoleGuest); err != nil {
			log.Printf("Skipping %s: %v", email, err)
			continue
		}
		seeded++
	}
	log.Printf("Seeded %d dummy guest accounts", seeded)
	log.Println("Seed complete")
}

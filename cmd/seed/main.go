package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"slotbook/config"
	"slotbook/database"
	catalogRepo "slotbook/database/repository/catalog"
	userRepo "slotbook/database/repository/user"
	"slotbook/models"
	"slotbook/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Seeds a development database with providers, their services and a few
// customers, then prints a bearer token for each account.
func main() {
	config.LoadConfig()
	database.InitDB()
	db := database.DB()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Clear existing seed data.
	for _, name := range []string{"users", "services", "bookings", "availability"} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("Failed to clear %s collection: %v", name, err)
		}
	}

	users := userRepo.NewMongoUserRepo(db)
	catalog := catalogRepo.NewMongoCatalogRepo(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create user indexes: %v", err)
	}
	if err := catalog.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create service indexes: %v", err)
	}

	serviceTypes := []struct {
		Name  string
		Price float64
	}{
		{"Cleaning", 25},
		{"Laundry", 15},
		{"Chauffeur", 40},
	}
	providersPerService := 3

	var accounts []models.User
	counter := 1
	for _, st := range serviceTypes {
		for i := 0; i < providersPerService; i++ {
			provider := models.User{
				ID:    uuid.New().String(),
				Name:  fmt.Sprintf("%s Provider %d", st.Name, counter),
				Email: fmt.Sprintf("provider_%d@example.com", counter),
				Role:  models.RoleServiceProvider,
			}
			if err := users.Create(ctx, &provider); err != nil {
				log.Fatalf("Failed to insert provider: %v", err)
			}
			svc := models.Service{
				ID:          uuid.New().String(),
				ProviderID:  provider.ID,
				Name:        st.Name,
				Description: fmt.Sprintf("%s by %s", st.Name, provider.Name),
				Price:       st.Price,
			}
			if err := catalog.Create(ctx, &svc); err != nil {
				log.Fatalf("Failed to insert service: %v", err)
			}
			fmt.Printf("provider %s service %s (%s)\n", provider.ID, svc.ID, st.Name)
			accounts = append(accounts, provider)
			counter++
		}
	}

	for i, role := range []models.Role{models.RoleUser, models.RoleUser, models.RoleAdmin} {
		u := models.User{
			ID:    uuid.New().String(),
			Name:  fmt.Sprintf("%s %d", role, i+1),
			Email: fmt.Sprintf("account_%d@example.com", i+1),
			Role:  role,
		}
		if err := users.Create(ctx, &u); err != nil {
			log.Fatalf("Failed to insert user: %v", err)
		}
		accounts = append(accounts, u)
	}

	if config.AppConfig.JWTSecret == "" {
		fmt.Println("JWT_SECRET is not set, skipping token generation")
		return
	}
	for _, u := range accounts {
		token, err := utils.GenerateToken(u.ID, string(u.Role), 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to sign token: %v", err)
		}
		fmt.Printf("%-16s %s %s\n", u.Role, u.ID, token)
	}
}

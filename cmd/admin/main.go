// Package main provides admin management utilities for the CFP backend.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"cfp/internal/config"
	"cfp/internal/database"
	"cfp/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go promote <user_id>     - Promote user to admin")
		fmt.Println("  go run ./cmd/admin/main.go demote <user_id>      - Demote user to formateur")
		fmt.Println("  go run ./cmd/admin/main.go list-admins           - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	command := os.Args[1]

	switch command {
	case "promote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go promote <user_id>")
			os.Exit(1)
		}
		promoteToAdmin(db, os.Args[2])

	case "demote":
		if len(os.Args) < 3 {
			fmt.Println("Usage: go run ./cmd/admin/main.go demote <user_id>")
			os.Exit(1)
		}
		demoteFromAdmin(db, os.Args[2])

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func promoteToAdmin(db *gorm.DB, userID string) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if user.IsAdmin() {
		fmt.Printf("User %s (ID: %d) is already an admin\n", user.FullName(), user.ID)
		return
	}

	user.Role = models.RoleAdmin
	user.Statut = models.UserStatutActif
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to promote user: %v", err)
	}
	fmt.Printf("User %s (ID: %d) promoted to admin\n", user.FullName(), user.ID)
}

func demoteFromAdmin(db *gorm.DB, userID string) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if !user.IsAdmin() {
		fmt.Printf("User %s (ID: %d) is not an admin\n", user.FullName(), user.ID)
		return
	}

	// Demoted admins become validated formateurs so they keep access.
	user.Role = models.RoleFormateur
	user.Statut = models.UserStatutValide
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to demote user: %v", err)
	}
	fmt.Printf("User %s (ID: %d) demoted to formateur\n", user.FullName(), user.ID)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to list admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}

	fmt.Printf("%-5s %-30s %-30s %s\n", "ID", "Nom", "Email", "Statut")
	for _, admin := range admins {
		fmt.Printf("%-5d %-30s %-30s %s\n", admin.ID, admin.FullName(), admin.Email, admin.Statut)
	}
}

// Package main provides admin management utilities for Wayfarer.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"wayfarer/internal/config"
	"wayfarer/internal/database"
	"wayfarer/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <user_id>   - Promote user to admin")
		fmt.Println("  go run ./cmd/admin demote <user_id>    - Demote user to regular user")
		fmt.Println("  go run ./cmd/admin list-admins         - List all admins")
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

	switch os.Args[1] {
	case "promote":
		setRole(db, userIDArg(), models.RoleAdmin)
	case "demote":
		setRole(db, userIDArg(), models.RoleUser)
	case "list-admins":
		listAdmins(db)
	default:
		log.Fatalf("Unknown command: %s", os.Args[1])
	}
}

func userIDArg() uint {
	if len(os.Args) < 3 {
		log.Fatal("user_id argument required")
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil {
		log.Fatalf("Invalid user_id %q: %v", os.Args[2], err)
	}
	return uint(id)
}

func setRole(db *gorm.DB, userID uint, role string) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("User %d not found", userID)
		}
		log.Fatalf("Failed to load user %d: %v", userID, err)
	}

	if role != models.RoleAdmin && user.Role == models.RoleAdmin {
		var admins int64
		if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
			log.Fatalf("Failed to count admins: %v", err)
		}
		if admins <= 1 {
			log.Fatal("Refusing to demote the last admin")
		}
	}

	if err := db.Model(&user).Update("role", role).Error; err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}
	fmt.Printf("User %d (%s) is now %s\n", user.ID, user.Username, role)
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
	for _, a := range admins {
		fmt.Printf("%d\t%s\t%s\n", a.ID, a.Username, a.Email)
	}
}

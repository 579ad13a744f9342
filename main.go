package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"resto-pos/config"
	"resto-pos/models"
	"resto-pos/permissions"
	"resto-pos/router"
	"resto-pos/services"
	"resto-pos/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()

	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)
	seed(db)

	r := router.SetupRouter(db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Table{},
		&models.TableSession{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Invoice{},
		&models.Setting{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

// seed creates the closed role set, the rates singleton and a default
// admin account when the database is empty.
func seed(db *gorm.DB) {
	roles := []models.Role{
		{Name: permissions.RoleWaiter},
		{Name: permissions.RoleChef},
		{Name: permissions.RoleBarista},
		{Name: permissions.RoleCashier},
		{Name: permissions.RoleAdmin, IsAdmin: true},
	}
	for _, role := range roles {
		if err := db.Where(models.Role{Name: role.Name}).FirstOrCreate(&role).Error; err != nil {
			utils.ErrorLogger.Printf("Error seeding role %s: %v", role.Name, err)
		}
	}

	if _, err := services.GetOrCreateSetting(db); err != nil {
		utils.ErrorLogger.Printf("Error seeding settings: %v", err)
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		utils.InfoLogger.Println("No users yet and ADMIN_USERNAME/ADMIN_PASSWORD unset, skipping admin seed")
		return
	}

	var adminRole models.Role
	if err := db.Where("name = ?", permissions.RoleAdmin).First(&adminRole).Error; err != nil {
		utils.ErrorLogger.Printf("Error loading admin role: %v", err)
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		utils.ErrorLogger.Printf("Error hashing admin password: %v", err)
		return
	}

	admin := models.User{
		Name:     "Administrator",
		Username: username,
		Password: hash,
		RoleID:   adminRole.ID,
	}
	if err := db.Create(&admin).Error; err != nil {
		utils.ErrorLogger.Printf("Error seeding admin user: %v", err)
		return
	}
	utils.InfoLogger.Printf("Seeded admin user %s", username)
}

// main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/xyzhospital/frontdesk/config"
	"github.com/xyzhospital/frontdesk/endpoint"
	"github.com/xyzhospital/frontdesk/middleware"
	"github.com/xyzhospital/frontdesk/model"
	"github.com/xyzhospital/frontdesk/util"
)

func main() {
	seed := flag.Bool("seed", false, "seed the fixed staff accounts and sample patients, then exit")
	flag.Parse()

	// Load the configuration
	cfg := config.LoadConfig()
	util.SetJWTSecret(os.Getenv("JWTSECRET"))

	db, err := config.ConnectSQLite()
	if err != nil {
		log.Fatalf("Error connecting to SQLite: %v", err)
	}
	if err := db.AutoMigrate(&model.Patient{}, &model.User{}, &model.Session{}, &model.AuditLog{}); err != nil {
		log.Fatalf("Error migrating schema: %v", err)
	}

	// Seeding is an explicit step, never part of normal startup.
	if *seed {
		if err := model.SeedUsers(db, util.HashPassword); err != nil {
			log.Fatalf("Error seeding users: %v", err)
		}
		if err := model.SeedPatients(db); err != nil {
			log.Fatalf("Error seeding patients: %v", err)
		}
		log.Println("Seed complete")
		return
	}

	util.SetAuditLoggerDB(db)
	util.InitIdentityCache(0)
	if err := util.InitGeoIP(""); err != nil {
		log.Printf("GeoIP disabled: %v", err)
	}
	defer util.CloseGeoIP()

	if _, err := config.ConnectRedis(); err != nil {
		log.Printf("Redis unavailable, session mirror and rate limiter degraded: %v", err)
	}

	// Set Gin mode from config
	gin.SetMode(cfg.GinMode)

	// Create a Gin router with default middleware
	router := gin.Default()
	router.LoadHTMLGlob("templates/*.html")

	router.Use(middleware.DatabaseMiddleware(db))
	router.Use(middleware.RequestLogger())

	router.GET("/", endpoint.Index)
	router.GET("/index", endpoint.Index)
	router.GET("/login", endpoint.LoginForm)
	router.POST("/login", middleware.RateLimiter(middleware.RateLimitConfig{}), endpoint.Login)
	router.POST("/logout", endpoint.Logout)

	authed := router.Group("/", middleware.SessionAuth())
	authed.GET("/user", endpoint.UserHomepage)
	authed.GET("/patients", endpoint.ListPatients)
	authed.GET("/updateDetails", endpoint.UpdateDetailsForm)
	authed.POST("/updateDetails", endpoint.UpdateDetails)
	authed.GET("/addnewpatient", endpoint.AddNewPatientForm)
	authed.POST("/addnewpatient", endpoint.AddNewPatient)
	authed.GET("/pat/:id", endpoint.PatientAddress)

	router.NoRoute(util.RenderNotFoundPage)

	// Start server on specified port
	address := fmt.Sprintf(":%d", cfg.AppPort)
	if err := router.Run(address); err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

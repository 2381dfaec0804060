// main.go
package main

import (
	"log"
	"os"
	"time"

	"proost/database"
	"proost/handlers"
	"proost/handlers/admin"
	"proost/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Initialize database
	database.InitDB()
	defer database.CloseDB()

	// Wire handler services
	handlers.Init()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	app.Use(middleware.RateLimitMiddleware())

	// API Routes
	api := app.Group("/api")

	// Auth routes with stricter rate limiting
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.AuthRateLimitMiddleware())
	authGroup.Post("/register", handlers.Register)
	authGroup.Post("/login", handlers.Login)

	// User routes
	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthMiddleware)
	userGroup.Get("/me", handlers.GetCurrentUser)
	userGroup.Get("/me/stats", handlers.GetUserStats)
	userGroup.Get("/search", handlers.SearchUsers)
	userGroup.Get("/:id", handlers.GetUserProfile)
	userGroup.Get("/:id/posts", handlers.GetUserPosts)

	// Feed
	api.Get("/feed", middleware.AuthMiddleware, handlers.GetFeed)

	// Post routes
	postGroup := api.Group("/posts")
	postGroup.Use(middleware.AuthMiddleware)
	postGroup.Post("/", handlers.CreatePost)
	postGroup.Get("/:id", handlers.GetPost)
	postGroup.Put("/:id/timing", handlers.UpdatePostTiming)
	postGroup.Put("/:id/groups", handlers.UpdatePostGroups)
	postGroup.Delete("/:id/photo", handlers.RemovePostPhoto)
	postGroup.Delete("/:id", handlers.DeletePost)

	// Connection routes
	connectionGroup := api.Group("/connections")
	connectionGroup.Use(middleware.AuthMiddleware)
	connectionGroup.Get("/", handlers.GetConnections)
	connectionGroup.Get("/requests", handlers.GetPendingRequests)
	connectionGroup.Post("/request", handlers.SendConnectionRequest)
	connectionGroup.Post("/:id/accept", handlers.AcceptConnectionRequest)
	connectionGroup.Post("/:id/reject", handlers.RejectConnectionRequest)
	connectionGroup.Delete("/:id", handlers.RemoveConnection)

	// Group routes
	groupGroup := api.Group("/groups")
	groupGroup.Use(middleware.AuthMiddleware)
	groupGroup.Post("/", handlers.CreateGroup)
	groupGroup.Get("/", handlers.GetUserGroups)
	groupGroup.Post("/join", handlers.JoinGroup)
	groupGroup.Get("/:id", handlers.GetGroup)
	groupGroup.Post("/:id/leave", handlers.LeaveGroup)
	groupGroup.Post("/:id/join-requests", handlers.RequestJoinGroup)
	groupGroup.Get("/:id/join-requests", handlers.GetGroupJoinRequests)
	groupGroup.Put("/:id/join-requests/:userId", handlers.ResolveGroupJoinRequest)
	groupGroup.Get("/:id/competitions", handlers.GetGroupCompetitions)
	groupGroup.Get("/:id/leaderboard", handlers.GetGroupLeaderboard)

	// Competition routes
	compGroup := api.Group("/competitions")
	compGroup.Use(middleware.AuthMiddleware)
	compGroup.Post("/", handlers.CreateCompetition)
	compGroup.Get("/:id", handlers.GetCompetitionStandings)
	compGroup.Post("/:id/join", handlers.JoinCompetition)
	compGroup.Post("/:id/leave", handlers.LeaveCompetition)
	compGroup.Delete("/:id", handlers.DeleteCompetition)

	// Leaderboard routes
	leaderboardGroup := api.Group("/leaderboard")
	leaderboardGroup.Use(middleware.AuthMiddleware)
	leaderboardGroup.Get("/", handlers.GetGlobalLeaderboard)

	// Achievement routes
	achievementGroup := api.Group("/achievements")
	achievementGroup.Use(middleware.AuthMiddleware)
	achievementGroup.Get("/", handlers.GetUserAchievements)
	achievementGroup.Get("/badge", handlers.GetAchievementBadge)

	// Live competition progress over websocket
	app.Get("/ws/competitions/:id",
		middleware.AuthMiddleware,
		handlers.LiveCompetitionAccess,
		handlers.LiveUpgrade,
		handlers.LiveCompetition())

	// Admin routes
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AdminAuthMiddleware)
	adminGroup.Get("/achievements", admin.GetAchievements)
	adminGroup.Post("/achievements", admin.CreateAchievement)
	adminGroup.Put("/achievements/:id", admin.UpdateAchievement)
	adminGroup.Delete("/achievements/:id", admin.DeleteAchievement)
	adminGroup.Post("/achievements/reseed", admin.ReseedAchievements)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("HTTP server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

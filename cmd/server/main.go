package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tsubakihara/task-management-backend/internal/config"
	"github.com/tsubakihara/task-management-backend/internal/database"
	"github.com/tsubakihara/task-management-backend/internal/handlers"
	"github.com/tsubakihara/task-management-backend/internal/mailer"
	"github.com/tsubakihara/task-management-backend/internal/middleware"
	"github.com/tsubakihara/task-management-backend/internal/repository"
	"github.com/tsubakihara/task-management-backend/internal/services"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(database.GetDB())
	taskRepo := repository.NewTaskRepository(database.GetDB())
	commentRepo := repository.NewCommentRepository(database.GetDB())
	leaderRepo := repository.NewLeaderRepository(database.GetDB())

	// Services
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.AccessTokenTTL)
	taskService := services.NewTaskService(taskRepo)
	commentService := services.NewCommentService(commentRepo, taskRepo)
	delegationService := services.NewDelegationService(leaderRepo, userRepo, taskRepo, taskService)
	notificationService := services.NewNotificationService(userRepo, taskRepo, mailer.NewSMTPMailer(cfg))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	commentHandler := handlers.NewCommentHandler(commentService)
	delegationHandler := handlers.NewDelegationHandler(delegationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	// Public routes
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.GET("/all-tasks", taskHandler.ListAll)
	r.GET("/all-tasks/:id", taskHandler.GetAny)

	// Authenticated routes
	auth := r.Group("/")
	auth.Use(middleware.RequireAuth(authService))
	{
		auth.DELETE("/logout", authHandler.Logout)
		auth.DELETE("/delete_account", authHandler.DeleteAccount)

		auth.GET("/users/profile", authHandler.GetProfile)
		auth.PATCH("/users/profile", authHandler.UpdateProfile)
		auth.PATCH("/users/:id/promote", delegationHandler.Promote)

		auth.POST("/tasks", taskHandler.Create)
		auth.GET("/tasks", taskHandler.List)
		auth.GET("/tasks/:id", taskHandler.Get)
		auth.PATCH("/tasks/:id", taskHandler.Update)
		auth.DELETE("/tasks/:id", taskHandler.Delete)

		auth.POST("/comments", commentHandler.Create)
		auth.GET("/comments", commentHandler.ListByTask)
		auth.GET("/comments/:id", commentHandler.Get)
		auth.PATCH("/comments/:id", commentHandler.Update)
		auth.DELETE("/comments/:id", commentHandler.Delete)

		auth.GET("/group_leaders", delegationHandler.ListLeaders)
		auth.GET("/group_leaders/:id", delegationHandler.GetLeader)
		auth.DELETE("/group_leaders/:id", delegationHandler.Demote)
		auth.POST("/group_leaders/:id/assign_users", delegationHandler.AssignMembers)
		auth.POST("/group_leaders/:id/users/:uid/assign_tasks", delegationHandler.AssignTasks)
		auth.GET("/group_leaders/:id/users/:uid/tasks", delegationHandler.ListMemberTasks)
		auth.GET("/group_leaders/:id/users/:uid/tasks/:tid", delegationHandler.GetMemberTask)
		auth.PATCH("/group_leaders/:id/users/:uid/tasks/:tid", delegationHandler.UpdateMemberTask)
		auth.DELETE("/group_leaders/:id/users/:uid/tasks/:tid", delegationHandler.DeleteMemberTask)

		auth.POST("/email-notification", notificationHandler.Notify)
	}

	log.Println("Starting server on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

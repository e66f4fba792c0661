package main

import (
	"fmt"
	"log"
	"os"

	"github.com/21namanpandey/virtual-queue-management-system/internal/auth"
	"github.com/21namanpandey/virtual-queue-management-system/internal/handlers"
	"github.com/21namanpandey/virtual-queue-management-system/internal/models"
	"github.com/21namanpandey/virtual-queue-management-system/internal/storage"
	"github.com/21namanpandey/virtual-queue-management-system/internal/tasks"
	"github.com/21namanpandey/virtual-queue-management-system/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @Title						Система управления виртуальными очередями
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	key := os.Getenv("ENV_CHEK")
	if key == "" {
		fmt.Println("Подключение к .env")
		if err := godotenv.Load(); err != nil {
			log.Fatal("Ошибка получения .env")
		}
	}

	storage.ConnectDatabase()

	if err := storage.DB.AutoMigrate(&models.User{}, &models.Queue{}, &models.UserQueue{}, &models.Notification{}); err != nil {
		log.Fatal("Ошибка при миграции... ", err.Error())
	}

	storage.InitRedis()

	tasks.InitScheduler()

	go ws.HubInstance.Run()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", handlers.Register)
		authGroup.POST("/login", handlers.Login)
		authGroup.POST("/refresh", handlers.RefreshToken)
		authGroup.POST("/forgot-password", handlers.ForgotPassword)
		authGroup.POST("/reset-password/:token", handlers.ResetPassword)

		protected := authGroup.Group("", auth.AuthMiddleware())
		{
			protected.POST("/logout", handlers.Logout)
			protected.GET("/profile", handlers.GetProfile)
			protected.PUT("/profile/edit", handlers.EditProfile)
		}
	}

	// WebSocket-сигналы об изменениях очереди, без авторизации:
	// браузер не умеет передавать заголовки при апгрейде.
	r.GET("/api/queues/:id/ws", ws.QueueWebSocketHandler)

	api := r.Group("/api", auth.AuthMiddleware())
	{
		queues := api.Group("/queues")
		{
			queues.GET("", handlers.GetQueuesHandler)
			queues.POST("", auth.AdminOnly(), handlers.CreateQueueHandler)

			queues.GET("/joined", handlers.GetJoinedQueuesHandler)
			queues.GET("/history", handlers.GetQueueHistoryHandler)
			queues.DELETE("/history/all", handlers.DeleteAllQueueHistoryHandler)
			queues.DELETE("/history/:id", handlers.DeleteQueueHistoryHandler)

			queues.GET("/:id", handlers.GetQueueDetailsHandler)
			queues.PUT("/:id", auth.AdminOnly(), handlers.UpdateQueueHandler)
			queues.DELETE("/:id", auth.AdminOnly(), handlers.DeleteQueueHandler)

			queues.POST("/:id/join", handlers.JoinQueueHandler)
			queues.POST("/:id/leave", handlers.LeaveQueueHandler)
			queues.PATCH("/:id/next", auth.AdminOnly(), handlers.NextInQueueHandler)
			queues.PATCH("/:id/pause", auth.AdminOnly(), handlers.PauseQueueHandler)
		}

		api.GET("/analytics", auth.AdminOnly(), handlers.GetAnalyticsHandler)

		notifications := api.Group("/notifications")
		{
			notifications.GET("", handlers.GetNotificationsHandler)
			notifications.PATCH("/:id", handlers.MarkNotificationReadHandler)
			notifications.DELETE("/:id", handlers.DeleteNotificationHandler)
			notifications.DELETE("", handlers.DeleteAllNotificationsHandler)
		}
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Ошибка запуска сервера...", err.Error())
	}
}

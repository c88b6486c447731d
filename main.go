package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"fanpuri-backend/internal/config"
	"fanpuri-backend/internal/database"
	"fanpuri-backend/internal/handlers"
	"fanpuri-backend/internal/mail"
	"fanpuri-backend/internal/middleware"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("⚠️ product index warning: %v", err)
	}
	if err := database.EnsureArtistIndexes(db); err != nil {
		log.Printf("⚠️ artist index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("⚠️ order index warning: %v", err)
	}

	var rdb *redis.Client
	if config.AppEnv.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     config.AppEnv.RedisAddr,
			Password: config.AppEnv.RedisPassword,
		})
		log.Println("Redis idempotency store:", config.AppEnv.RedisAddr)
	} else {
		log.Println("REDIS_ADDR not set, purchase idempotency dedup disabled")
	}

	var mailer mail.Mailer = mail.LogMailer{}
	if config.AppEnv.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(
			config.AppEnv.SMTPHost,
			config.AppEnv.SMTPPort,
			config.AppEnv.SMTPUser,
			config.AppEnv.SMTPPass,
			config.AppEnv.MailFrom,
		)
		log.Println("SMTP mailer configured:", config.AppEnv.SMTPHost)
	}

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))
	r.POST("/products/:id/purchase", handlers.PurchaseProduct(db, rdb))
	r.POST("/products/:id/waitlist", handlers.JoinWaitlist(db, mailer))

	r.GET("/artists", handlers.GetArtists(db))
	r.GET("/artists/:id", handlers.GetArtist(db))

	r.POST("/orders", handlers.CreateOrder(db, mailer, config.AppEnv.JWTSecret))
	r.GET("/orders/user/:userId", handlers.GetUserOrders(db))
	r.GET("/orders/:orderId", handlers.GetOrder(db))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.POST("/artists", handlers.CreateArtist(db))
		admin.PUT("/artists/:id", handlers.UpdateArtist(db))
		admin.DELETE("/artists/:id", handlers.DeleteArtist(db))
		admin.POST("/artists/cleanup-duplicates", handlers.CleanupDuplicateArtists(db))

		admin.PATCH("/orders/:orderId/status", handlers.UpdateOrderStatus(db))
	}

	r.Run(":" + config.AppEnv.Port)
}

package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"tutorhub-backend/config"
	"tutorhub-backend/linebot"
	"tutorhub-backend/models"
	"tutorhub-backend/repository"
	"tutorhub-backend/routes"
	"tutorhub-backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	config.ConnectDB(cfg.DatabaseURL)
	config.DB.AutoMigrate(
		&models.Bookable{},
		&models.Booking{},
		&models.Customer{},
		&models.Conversation{},
		&models.NotificationLog{},
	)

	if cfg.SeedDemoData {
		seed(config.DB)
	}

	rdb, err := config.ConnectRedis(cfg)
	if err != nil {
		log.Printf("Redis unavailable, webhook dedup disabled: %v", err)
	}

	if cfg.LineChannelSecret == "" {
		log.Println("LINE_CHANNEL_SECRET not set; all webhook requests will be rejected")
	}
	line := linebot.NewClient(cfg.LineChannelToken)

	bookings := repository.NewBookingRepository(config.DB)
	bookables := repository.NewBookableRepository(config.DB)
	customers := repository.NewCustomerRepository(config.DB)
	conversations := repository.NewConversationRepository(config.DB)

	notifier := services.NewNotifier(config.DB, cfg, line)
	notifier.Start()

	ledger := services.NewLedger(bookings, bookables, customers, notifier, cfg)
	services.StartCompletionScheduler(ledger)

	r := routes.SetupRouter(routes.Deps{
		Cfg:           cfg,
		Ledger:        ledger,
		Bookables:     bookables,
		Bookings:      bookings,
		Customers:     customers,
		Conversations: conversations,
		Line:          line,
		Redis:         rdb,
	})
	printRoutes(r)
	r.Run(":" + cfg.Port)
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}

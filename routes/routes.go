package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"tutorhub-backend/config"
	"tutorhub-backend/controllers"
	"tutorhub-backend/linebot"
	"tutorhub-backend/repository"
	"tutorhub-backend/services"
	"tutorhub-backend/utils"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Cfg           *config.Config
	Ledger        *services.Ledger
	Bookables     *repository.BookableRepository
	Bookings      *repository.BookingRepository
	Customers     *repository.CustomerRepository
	Conversations *repository.ConversationRepository
	Line          *linebot.Client
	Redis         *redis.Client
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Admin-Password"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	booking := &controllers.BookingController{
		Ledger:    d.Ledger,
		Bookables: d.Bookables,
	}
	bookable := &controllers.BookableController{
		Bookables: d.Bookables,
	}
	admin := &controllers.AdminController{
		Cfg:           d.Cfg,
		Ledger:        d.Ledger,
		Bookings:      d.Bookings,
		Customers:     d.Customers,
		Conversations: d.Conversations,
	}
	webhook := &controllers.WebhookController{
		Cfg:           d.Cfg,
		Ledger:        d.Ledger,
		Bookables:     d.Bookables,
		Bookings:      d.Bookings,
		Customers:     d.Customers,
		Conversations: d.Conversations,
		Line:          d.Line,
		Redis:         d.Redis,
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/bookables", booking.ListBookables)
		api.GET("/bookables/:id/availability", booking.GetAvailability)
		api.POST("/book", booking.CreateBooking)
	}

	r.POST("/webhook/line", webhook.Handle)

	adminAPI := r.Group("/admin/api")
	{
		adminAPI.POST("/login", admin.Login)

		authed := adminAPI.Group("", utils.AdminAuthMiddleware(d.Cfg))
		{
			authed.GET("/bookings", admin.GetBookings)
			authed.POST("/bookings/:id/cancel", admin.CancelBooking)
			authed.GET("/bookables", bookable.ListBookables)
			authed.POST("/bookables", bookable.CreateBookable)
			authed.PUT("/bookables/:id", bookable.UpdateBookable)
			authed.GET("/customers", admin.GetCustomers)
			authed.GET("/stats", admin.GetStats)
			authed.GET("/conversations", admin.GetConversations)
		}
	}

	return r
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/hermione06/cafeteria-management-system/handlers"
	"github.com/hermione06/cafeteria-management-system/middleware"
	"github.com/hermione06/cafeteria-management-system/models"
)

// Handlers bundles everything SetupRoutes needs to wire the API.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Menu          *handlers.MenuHandler
	Orders        *handlers.OrderHandler
	Users         *handlers.UserHandler
	Announcements *handlers.AnnouncementHandler
}

func SetupRoutes(r *gin.Engine, h Handlers, jwtSecret string) {
	// State machine info (great for docs/Postman)
	r.GET("/api/state-machine", handlers.GetOrderLifecycle)

	// ── Auth ───────────────────────────────────────────────────────
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/verify-email/:token", h.Auth.VerifyEmail)
		authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
		authGroup.POST("/reset-password/:token", h.Auth.ResetPassword)

		authGroup.POST("/refresh", middleware.RefreshRequired(jwtSecret), h.Auth.Refresh)

		authed := authGroup.Group("")
		authed.Use(middleware.AuthRequired(jwtSecret))
		{
			authed.GET("/me", h.Auth.Me)
			authed.POST("/logout", h.Auth.Logout)
			authed.POST("/change-password", h.Auth.ChangePassword)
		}
	}

	// ── Menu ───────────────────────────────────────────────────────
	menu := r.Group("/api/menu")
	{
		menu.GET("", h.Menu.ListItems)
		menu.GET("/categories", h.Menu.GetCategories)
		menu.GET("/:id", h.Menu.GetItem)

		staff := menu.Group("")
		staff.Use(middleware.AuthRequired(jwtSecret), middleware.RoleRequired(models.RoleStaff, models.RoleAdmin))
		{
			staff.PUT("/:id", h.Menu.UpdateItem)
			staff.PATCH("/:id/availability", h.Menu.SetAvailability)
			staff.POST("/:id/image", h.Menu.UploadImage)
		}

		admin := menu.Group("")
		admin.Use(middleware.AuthRequired(jwtSecret), middleware.RoleRequired(models.RoleAdmin))
		{
			admin.POST("", h.Menu.CreateItem)
			admin.DELETE("/:id", h.Menu.DeleteItem)
		}
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := r.Group("/api/orders")
	orders.Use(middleware.AuthRequired(jwtSecret))
	{
		orders.POST("", h.Orders.CreateOrder)
		orders.GET("", h.Orders.ListOrders)
		orders.GET("/:id", h.Orders.GetOrder)
		orders.POST("/:id/items", h.Orders.AddItem)
		orders.DELETE("/:id/items/:itemId", h.Orders.RemoveItem)
		orders.DELETE("/:id", h.Orders.DeleteOrder)

		staff := orders.Group("")
		staff.Use(middleware.RoleRequired(models.RoleStaff, models.RoleAdmin))
		{
			staff.PATCH("/:id/status", h.Orders.UpdateStatus)
			staff.PATCH("/:id/payment", h.Orders.UpdatePayment)
		}
	}

	// ── Users ──────────────────────────────────────────────────────
	users := r.Group("/api/users")
	users.Use(middleware.AuthRequired(jwtSecret))
	{
		users.GET("/:id", h.Users.GetUser)
		users.PUT("/:id", h.Users.UpdateUser)

		admin := users.Group("")
		admin.Use(middleware.RoleRequired(models.RoleAdmin))
		{
			admin.GET("", h.Users.ListUsers)
			admin.GET("/stats", h.Users.GetStats)
			admin.DELETE("/:id", h.Users.DeleteUser)
		}
	}

	// ── Announcements ──────────────────────────────────────────────
	announcements := r.Group("/api/announcements")
	{
		announcements.GET("", h.Announcements.ListActive)
		announcements.GET("/:id", h.Announcements.GetAnnouncement)

		admin := announcements.Group("")
		admin.Use(middleware.AuthRequired(jwtSecret), middleware.RoleRequired(models.RoleAdmin))
		{
			admin.GET("/all", h.Announcements.ListAll)
			admin.POST("", h.Announcements.CreateAnnouncement)
			admin.PUT("/:id", h.Announcements.UpdateAnnouncement)
			admin.DELETE("/:id", h.Announcements.DeleteAnnouncement)
		}
	}
}

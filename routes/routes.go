package routes

import (
	"net/http"
	"time"

	"medbook/handlers"
	"medbook/middleware"
	"medbook/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes registers authentication, profile and user admin endpoints.
func RegisterUserRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, auth, admin gin.HandlerFunc) {
	users := api.Group("/users")
	{
		users.POST("/register", hb.Users.RegisterUserHandler)
		users.POST("/login", hb.Users.AuthenticateUserHandler)

		// Protected routes (Require Authentication)
		users.POST("/logout", auth, hb.Users.RevokeAuthTokenHandler)
		users.GET("/details", auth, hb.Users.GetProfileHandler)
		users.PUT("/details", auth, hb.Users.UpdateProfileHandler)

		users.GET("", auth, admin, hb.Users.GetAllUsersHandler)
		users.POST("", auth, admin, hb.Users.CreateUserHandler)
		users.GET("/:id", auth, admin, hb.Users.GetUserByIDHandler)
		users.PUT("/:id", auth, admin, hb.Users.UpdateUserHandler)
		users.DELETE("/:id", auth, admin, hb.Users.DeleteUserHandler)
	}
}

// RegisterCatalogRoutes registers specialties, clinics and doctors.
func RegisterCatalogRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, auth, admin gin.HandlerFunc) {
	specialties := api.Group("/specialties")
	{
		specialties.GET("", hb.Catalog.ListSpecialtiesHandler)
		specialties.GET("/:id", hb.Catalog.GetSpecialtyHandler)
		specialties.POST("", auth, admin, hb.Catalog.CreateSpecialtyHandler)
		specialties.PUT("/:id", auth, admin, hb.Catalog.UpdateSpecialtyHandler)
		specialties.DELETE("/:id", auth, admin, hb.Catalog.DeleteSpecialtyHandler)
	}

	clinics := api.Group("/clinics")
	{
		clinics.GET("", hb.Catalog.ListClinicsHandler)
		clinics.GET("/:id", hb.Catalog.GetClinicHandler)
		clinics.POST("", auth, admin, hb.Catalog.CreateClinicHandler)
		clinics.PUT("/:id", auth, admin, hb.Catalog.UpdateClinicHandler)
		clinics.DELETE("/:id", auth, admin, hb.Catalog.DeleteClinicHandler)
	}

	doctors := api.Group("/doctors")
	{
		// Doctor dashboard. Registered before /:id.
		me := doctors.Group("/me", auth, middleware.RequireRoles(models.RoleDoctor))
		me.GET("/schedules", hb.Schedules.MySchedulesHandler)
		me.GET("/bookings", hb.Bookings.MyBookingsHandler)

		doctors.GET("", hb.Catalog.ListDoctorsHandler)
		doctors.GET("/:id", hb.Catalog.GetDoctorHandler)
		doctors.POST("", auth, admin, hb.Catalog.CreateDoctorHandler)
		doctors.PUT("/:id", auth, admin, hb.Catalog.UpdateDoctorHandler)
		doctors.DELETE("/:id", auth, admin, hb.Catalog.DeleteDoctorHandler)
	}
}

// RegisterScheduleRoutes registers the schedule endpoints.
func RegisterScheduleRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, auth, admin gin.HandlerFunc) {
	schedules := api.Group("/schedules")
	{
		schedules.GET("", hb.Schedules.ListSchedulesHandler)
		schedules.GET("/:id", hb.Schedules.GetScheduleHandler)
		schedules.POST("", auth, admin, hb.Schedules.CreateScheduleHandler)
		schedules.PUT("/:id", auth, admin, hb.Schedules.UpdateScheduleHandler)
		schedules.DELETE("/:id", auth, admin, hb.Schedules.DeleteScheduleHandler)
	}
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, auth, admin gin.HandlerFunc) {
	bookings := api.Group("/bookings", auth)
	{
		bookings.POST("", middleware.RequireRoles(models.RolePatient), hb.Bookings.CreateBookingHandler)
		bookings.GET("/user/:userId", hb.Bookings.ListUserBookingsHandler)
		bookings.GET("/user/:userId/detail", hb.Bookings.GetBookingDetailHandler)
		bookings.PUT("/user/:userId/detail", hb.Bookings.UpdateBookingDetailHandler)
		bookings.DELETE("/:id", hb.Bookings.DeleteBookingHandler)

		bookings.GET("", admin, hb.Bookings.ListAllBookingsHandler)
		bookings.PUT("/:id/status", admin, hb.Bookings.UpdateBookingStatusHandler)
	}
}

// RegisterPaymentRoutes sets up gateway links and callbacks. Callbacks are
// authenticated by their signatures, not by a bearer token.
func RegisterPaymentRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, auth gin.HandlerFunc) {
	payment := api.Group("/payment")
	{
		payment.GET("/vn-pay", auth, hb.Payments.VNPayLinkHandler)
		payment.GET("/vn-pay/return", hb.Payments.VNPayReturnHandler)
		payment.GET("/vn-pay/ipn", hb.Payments.VNPayIPNHandler)
		payment.GET("/stripe", auth, hb.Payments.StripeLinkHandler)
		payment.POST("/stripe/webhook", hb.Payments.StripeWebhookHandler)
	}
}

// RegisterAdminRoutes sets up images, contact messages and stats.
func RegisterAdminRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle, auth, admin gin.HandlerFunc) {
	images := api.Group("/images", auth, admin)
	{
		images.POST("/uploads", hb.Storage.UploadDoctorImageHandler)
		images.POST("/specialty-upload", hb.Storage.UploadSpecialtyImageHandler)
	}

	api.POST("/contacts", hb.Contacts.SubmitContactHandler)
	api.GET("/contacts", auth, admin, hb.Contacts.ListContactsHandler)

	api.GET("/admin/stats", auth, admin, hb.Admin.GetStatsHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", func(c *gin.Context) {
		if hb.Health == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm medbook"})
			return
		}
		st := hb.Health.Status()
		status := "ok"
		for _, up := range st.Services {
			if !up {
				status = "degraded"
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "services": st.Services, "checkedAt": st.CheckedAt})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	auth := middleware.JWTAuthMiddleware(hb.Tokens, hb.DenyList)
	admin := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group("/api/v1")
	RegisterUserRoutes(api, hb, auth, admin)
	RegisterCatalogRoutes(api, hb, auth, admin)
	RegisterScheduleRoutes(api, hb, auth, admin)
	RegisterBookingRoutes(api, hb, auth, admin)
	RegisterPaymentRoutes(api, hb, auth)
	RegisterAdminRoutes(api, hb, auth, admin)
	RegisterHealthRoute(r, hb)
}

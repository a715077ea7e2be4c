package main

import (
	"github.com/gin-gonic/gin"

	"github.com/bamboofin/bamboo_portal/internal/handler"
	"github.com/bamboofin/bamboo_portal/internal/middleware"
	"github.com/bamboofin/bamboo_portal/internal/models"
	"github.com/bamboofin/bamboo_portal/internal/permission"
)

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health       *handler.HealthHandler
	Comparator   *handler.ComparatorHandler
	Auth         *handler.AuthHandler
	Account      *handler.AccountHandler
	Admin        *handler.AdminHandler
	Management   *handler.ManagementHandler
	Analytics    *handler.AnalyticsHandler
	Notification *handler.NotificationHandler
}

// Middlewares groups the stateful middlewares used by the routes.
type Middlewares struct {
	Auth      *middleware.AuthMiddleware
	Workspace *middleware.WorkspaceMiddleware
	Login     *middleware.LoginLimiter
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, mw *Middlewares) {
	router.GET("/api/health", handlers.Health.GetHealth)

	api := router.Group("/api")
	api.Use(mw.Workspace.Peek(), mw.Auth.Optional())

	api.GET("/notifications/stream", mw.Workspace.Handle(), handlers.Notification.Stream)
	api.POST("/analytics/events", handlers.Analytics.Track)

	// Comparator, open to visitors
	cmp := api.Group("/comparator")
	cmp.Use(mw.Workspace.Handle())
	{
		cmp.GET("/banks", handlers.Comparator.Banks)
		cmp.GET("/options", handlers.Comparator.Options)
		cmp.GET("/state", handlers.Comparator.State)
		cmp.POST("/validate", handlers.Comparator.Validate)
		cmp.POST("/banks/:id/toggle", handlers.Comparator.Toggle)
		cmp.POST("/banks/toggle-all", handlers.Comparator.ToggleAll)
		cmp.POST("/banks/reset", handlers.Comparator.ResetSelection)
		cmp.POST("/compare", handlers.Comparator.Compare)
		cmp.GET("/results", handlers.Comparator.Results)
		cmp.GET("/share", handlers.Comparator.Share)
		cmp.POST("/reset", handlers.Comparator.Reset)
		cmp.POST("/offers/:id/apply", handlers.Comparator.Apply)

		saved := cmp.Group("")
		saved.Use(mw.Auth.Require(), middleware.RequireKind(models.SessionCustomer))
		saved.POST("/save", handlers.Comparator.Save)
		saved.GET("/saved", handlers.Comparator.SavedList)
		saved.GET("/saved/:id", handlers.Comparator.SavedGet)
		saved.DELETE("/saved/:id", handlers.Comparator.SavedDelete)
	}

	// Customer authentication
	auth := api.Group("/auth")
	{
		auth.POST("/login", mw.Login.Guard(), handlers.Auth.Login)
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/verify", handlers.Auth.Verify)
		auth.POST("/resend-verification", handlers.Auth.ResendVerification)
		auth.POST("/reset-password", handlers.Auth.RequestPasswordReset)
		auth.POST("/reset-password/confirm", handlers.Auth.ConfirmPasswordReset)
		auth.GET("/me", mw.Auth.Require(), handlers.Auth.Me)
		auth.POST("/logout", mw.Auth.Require(), handlers.Auth.Logout)
	}

	// Customer area
	me := api.Group("/me")
	me.Use(mw.Auth.Require(), middleware.RequireKind(models.SessionCustomer))
	{
		me.GET("/profile", handlers.Account.Profile)
		me.PUT("/profile", handlers.Account.UpdateProfile)
		me.POST("/change-password", handlers.Account.ChangePassword)
		me.GET("/dashboard", handlers.Account.Dashboard)
		me.GET("/simulations", handlers.Account.Simulations)
		me.POST("/simulations", handlers.Account.SaveSimulation)
		me.GET("/applications", handlers.Account.Applications)
		me.POST("/applications/:kind", handlers.Account.CreateApplication)
		me.GET("/notifications", handlers.Account.Notifications)
		me.POST("/notifications/read", handlers.Account.MarkNotificationsRead)
	}

	// Admin authentication
	adminAuth := api.Group("/admin/auth")
	{
		adminAuth.POST("/login", mw.Login.Guard(), handlers.Auth.AdminLogin)
		adminAuth.GET("/me", mw.Auth.Require(), middleware.RequireKind(models.SessionAdmin), handlers.Auth.Me)
		adminAuth.GET("/profile", mw.Auth.Require(), middleware.RequireKind(models.SessionAdmin), handlers.Admin.Profile)
		adminAuth.POST("/logout", mw.Auth.Require(), handlers.Auth.Logout)
	}

	// Admin back office
	admin := api.Group("/admin")
	admin.Use(mw.Auth.Require(), middleware.RequireKind(models.SessionAdmin))
	{
		// Banks
		admin.GET("/banks", middleware.RequirePermission("banks", permission.ActionRead), handlers.Admin.ListBanks)
		admin.GET("/banks/:id", middleware.RequirePermission("banks", permission.ActionRead), handlers.Admin.GetBank)
		admin.POST("/banks", middleware.RequirePermission("banks", permission.ActionCreate), handlers.Admin.CreateBank)
		admin.PUT("/banks/:id", middleware.RequirePermission("banks", permission.ActionUpdate), handlers.Admin.UpdateBank)

		// Products
		admin.GET("/products/:kind", handler.RequireProductPermission(permission.ActionRead), handlers.Admin.ListProducts)
		admin.GET("/products/:kind/:id", handler.RequireProductPermission(permission.ActionRead), handlers.Admin.GetProduct)
		admin.POST("/products/:kind", handler.RequireProductPermission(permission.ActionCreate), handlers.Admin.CreateProduct)
		admin.PUT("/products/:kind/:id", handler.RequireProductPermission(permission.ActionUpdate), handlers.Admin.UpdateProduct)
		admin.DELETE("/products/:kind/:id", handler.RequireProductPermission(permission.ActionDelete), handlers.Admin.DeleteProduct)

		// Simulations and applications
		admin.GET("/simulations", middleware.RequirePermission("simulations", permission.ActionRead), handlers.Admin.ListSimulations)
		admin.GET("/applications",
			handler.RequireAnyPermission("applications", permission.ActionRead, permission.ActionManage),
			handlers.Admin.ListApplications)
		admin.PUT("/applications/:kind/:id/status",
			handler.RequireAnyPermission("applications", permission.ActionUpdate, permission.ActionManage),
			handlers.Admin.UpdateApplicationStatus)

		// Portal analytics
		admin.GET("/analytics/summary", middleware.RequirePermission("audit", permission.ActionRead), handlers.Analytics.Summary)
		admin.GET("/analytics/events", middleware.RequirePermission("audit", permission.ActionRead), handlers.Analytics.List)
	}

	// Admin account management
	mgmt := api.Group("/admin/management")
	mgmt.Use(mw.Auth.Require(), middleware.RequireSuperAdmin())
	{
		mgmt.GET("/admins", handlers.Management.List)
		mgmt.POST("/admins", handlers.Management.Create)
		mgmt.GET("/admins/:id", handlers.Management.Get)
		mgmt.PUT("/admins/:id", handlers.Management.Update)
		mgmt.DELETE("/admins/:id", handlers.Management.Delete)
		mgmt.PATCH("/admins/:id/toggle-status", handlers.Management.ToggleStatus)
		mgmt.GET("/institutions", handlers.Management.Institutions)
		mgmt.GET("/stats", handlers.Management.Stats)
		mgmt.GET("/validate-username", handlers.Management.ValidateUsername)
		mgmt.GET("/validate-email", handlers.Management.ValidateEmail)
	}
}

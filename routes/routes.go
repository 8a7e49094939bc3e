package routes

import (
	"time"

	"schoolgear/app"
	"schoolgear/controllers"
	"schoolgear/models"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	uc := controllers.NewUserController(s)
	ec := controllers.NewEquipmentController(s)
	cc := controllers.NewCategoryController(s)
	lc := controllers.NewLendingController(s)
	rc := controllers.NewRepairController(s)
	ac := controllers.NewAnalyticsController(s)

	authMW := app.AuthRequired(a.Issuer, a.Tokens, s.Repo)
	adminMW := app.RequireRoles(models.RoleAdmin)
	staffMW := app.RequireRoles(models.RoleAdmin, models.RoleStaff)
	borrowerMW := app.RequireRoles(models.RoleStudent, models.RoleStaff)
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	app.RegisterMetrics()
	r.Use(app.Metrics(), app.RateLimit(a.Config))

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })
	r.GET("/metrics", app.MetricsHandler())

	// ------------------------------
	// Users & auth
	// ------------------------------
	users := r.Group("/users")
	{
		users.POST("/login", uc.Login)
	}
	usersAuth := users.Group("", authMW, seenMW)
	{
		usersAuth.POST("/logout", uc.Logout)
		usersAuth.GET("/me", uc.Me)
	}
	usersAdmin := users.Group("", authMW, adminMW)
	{
		usersAdmin.POST("/signup", uc.Signup)
		usersAdmin.GET("", uc.ListUsers) // ?q=&page=&size=
		usersAdmin.DELETE("/:id", uc.DeleteUser)
	}

	// ------------------------------
	// Equipment & categories
	// ------------------------------
	equipment := r.Group("/equipment", authMW, seenMW)
	{
		equipment.GET("", ec.List) // ?categoryId=&search=&onlyAvailable=
		equipment.GET("/:id", ec.Get)
	}
	equipmentAdmin := r.Group("/equipment", authMW, adminMW)
	{
		equipmentAdmin.POST("", ec.Create)
		equipmentAdmin.PUT("/:id", ec.Update)
		equipmentAdmin.DELETE("/:id", ec.Delete)
	}

	categories := r.Group("/categories", authMW)
	{
		categories.GET("", cc.List)
	}
	categoriesAdmin := r.Group("/categories", authMW, adminMW)
	{
		categoriesAdmin.POST("", cc.Create)
		categoriesAdmin.PUT("/:id", cc.Update)
		categoriesAdmin.DELETE("/:id", cc.Delete)
	}

	// ------------------------------
	// Lending lifecycle
	// ------------------------------
	lending := r.Group("/lending", authMW, seenMW)
	{
		lending.POST("/request", borrowerMW, lc.Create)
		lending.GET("/mine", lc.Mine)
	}
	lendingStaff := r.Group("/lending", authMW, staffMW)
	{
		lendingStaff.POST("/approve/:id", lc.Approve)
		lendingStaff.POST("/reject/:id", lc.Reject)
		lendingStaff.POST("/return/:id", lc.Return)
		lendingStaff.GET("/overdue", lc.Overdue)
		lendingStaff.GET("", lc.List) // ?status=
	}

	// ------------------------------
	// Repair log & analytics
	// ------------------------------
	repairs := r.Group("/repairs", authMW, seenMW)
	{
		repairs.POST("", rc.Report)
	}
	repairsStaff := r.Group("/repairs", authMW, staffMW)
	{
		repairsStaff.GET("", rc.List) // ?equipmentId=&open=
		repairsStaff.PUT("/:id/complete", rc.Complete)
	}

	analytics := r.Group("/analytics", authMW, adminMW)
	{
		analytics.GET("/usage/top-requested", ac.TopRequested)
		analytics.GET("/usage/average-duration", ac.AverageDuration)
	}
}

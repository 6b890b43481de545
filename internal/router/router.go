package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/teamtrack/backend/api/handler"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	User   *apiHandler.UserHandler
	Report *apiHandler.ReportHandler
	Health *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// User registration stays open: identities are created on first contact.
	r.POST("/api/v1/users", handlers.User.Register)

	r.GET("/api/v1/users/coordinator", authMiddleware(handlers.User.Coordinator))
	r.GET("/api/v1/users/{id}", authMiddleware(handlers.User.Get))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.List))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.Create))
	r.GET("/api/v1/tasks/{number}", authMiddleware(handlers.Task.Get))
	r.PUT("/api/v1/tasks/{number}", authMiddleware(handlers.Task.Edit))
	r.DELETE("/api/v1/tasks/{number}", authMiddleware(handlers.Task.Delete))
	r.PUT("/api/v1/tasks/{number}/status", authMiddleware(handlers.Task.ChangeStatus))
	r.POST("/api/v1/tasks/{number}/comments", authMiddleware(handlers.Task.AddComment))
	r.GET("/api/v1/tasks/{number}/history", authMiddleware(handlers.Task.History))
	r.POST("/api/v1/tasks/{number}/subtasks", authMiddleware(handlers.Task.AddSubtask))
	r.POST("/api/v1/subtasks/{id}/toggle", authMiddleware(handlers.Task.ToggleSubtask))

	r.GET("/api/v1/reports", authMiddleware(handlers.Report.Statistics))

	return r
}

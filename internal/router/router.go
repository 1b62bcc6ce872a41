// Package router defines how HTTP routes are registered for the API.
// Route groups map directly onto the role hierarchy: anything under the
// viewer group needs at least a viewer session, sampler routes need at
// least sampler, admin routes need admin.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/agrisense/pathotrack/internal/auth"
	"github.com/agrisense/pathotrack/internal/config"
	"github.com/agrisense/pathotrack/internal/handler"
	"github.com/agrisense/pathotrack/internal/middleware"
	"github.com/agrisense/pathotrack/internal/model"
)

// Handlers collects every handler the router wires up.
type Handlers struct {
	Auth    *handler.AuthHandler
	Routes  *handler.RouteHandler
	Species *handler.SpeciesHandler
	Users   *handler.UserHandler
	Uploads *handler.UploadHandler
}

// Register wires all routes onto the Echo instance.  svc gates the
// protected groups; rdb (may be nil) backs the response cache on the
// public listing endpoints.
func Register(e *echo.Echo, svc *auth.Service, h Handlers, cacheCfg config.CacheConfig, rdb *redis.Client) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Unauthenticated auth endpoints.  Logout accepts a stale or absent
	// cookie so a client can always clear its state.
	g := e.Group("/v1/auth")
	g.POST("/login", h.Auth.Login)
	g.POST("/logout", h.Auth.Logout)

	// Read-side endpoints: any authenticated role.
	viewer := e.Group("/v1", middleware.RequireRole(svc, model.RoleViewer))
	viewer.GET("/me", h.Auth.Me)
	viewer.GET("/routes", h.Routes.List, middleware.ResponseCache(cacheCfg, rdb))
	viewer.GET("/routes/:id", h.Routes.Get)
	viewer.GET("/routes/:id/detections", h.Routes.ListDetections)
	viewer.GET("/routes/:id/uploads", h.Routes.ListUploads)
	viewer.GET("/species", h.Species.List, middleware.ResponseCache(cacheCfg, rdb))

	// Field-data entry: sampler and above.
	sampler := e.Group("/v1", middleware.RequireRole(svc, model.RoleSampler))
	sampler.POST("/routes", h.Routes.Create)
	sampler.PUT("/routes/:id", h.Routes.Update)
	sampler.POST("/uploads/metabarcode", h.Uploads.Ingest)

	// Administrative surface.
	admin := e.Group("/v1", middleware.RequireRole(svc, model.RoleAdmin))
	admin.DELETE("/routes/:id", h.Routes.Delete)
	admin.GET("/users", h.Users.List)
	admin.POST("/users", h.Users.Create)
	admin.PUT("/users/:id", h.Users.Update)
	admin.POST("/species", h.Species.Create)
	admin.PUT("/species/:id", h.Species.Update)
	admin.DELETE("/species/:id", h.Species.Delete)
}

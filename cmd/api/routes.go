package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"workspace-identity/internal/auth"
	"workspace-identity/internal/httpapi"
	"workspace-identity/internal/ratelimit"
	"workspace-identity/internal/rbac"
	"workspace-identity/pkg/logger"
)

func newRouter(log *slog.Logger, h httpapi.Handlers, limiter *ratelimit.Limiter, devLogin bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	registerRoutes(r, h, auth.RequireAccessToken(h.Sessions), limiter.Middleware(), devLogin)
	return r
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW, authLimit gin.HandlerFunc, devLogin bool) {
	v1 := r.Group("/v1")

	// AUTH routes: unauthenticated, rate limited per client IP.
	authGroup := v1.Group("/auth")
	authGroup.Use(authLimit)
	{
		if h.Google != nil {
			authGroup.GET("/oauth/google/login", h.GoogleLogin)
			authGroup.GET("/oauth/google/callback", h.GoogleCallback)
		}
		if devLogin {
			authGroup.POST("/dev/login", h.DevLogin)
		}
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", authMW, h.Me)
	}

	// Everything below requires a live access token.
	protected := v1.Group("")
	protected.Use(authMW)

	// WORKSPACE routes
	workspaces := protected.Group("/workspaces")
	{
		workspaces.GET("", h.ListWorkspaces)
		workspaces.POST("", h.CreateWorkspace)
		workspaces.GET("/default", h.GetDefaultWorkspace)
		workspaces.PUT("/default", h.SetDefaultWorkspace)
	}

	// Workspace-scoped routes. Roles are checked by the membership engine.
	scoped := workspaces.Group("/:workspace_id")
	scoped.Use(rbac.RequireWorkspace("workspace_id"))
	{
		scoped.GET("", h.GetWorkspace)
		scoped.PATCH("", h.UpdateWorkspace)
		scoped.DELETE("", h.DeleteWorkspace)

		scoped.GET("/members", h.ListMembers)
		scoped.PATCH("/members/:member_id/role", h.UpdateMemberRole)
		scoped.DELETE("/members/:member_id", h.RemoveMember)

		scoped.POST("/join-requests", h.CreateJoinRequest)
		scoped.GET("/join-requests", h.ListJoinRequests)
		scoped.PATCH("/join-requests/:request_id", h.UpdateJoinRequest)
	}

	// PROFILE routes
	profiles := protected.Group("/profiles")
	{
		profiles.GET("", h.ListProfiles)
		profiles.GET("/:workspace_id", h.GetProfile)
		profiles.PATCH("/:workspace_id", h.UpdateProfile)
	}
	protected.DELETE("/users/me", h.DeleteMe)
}
